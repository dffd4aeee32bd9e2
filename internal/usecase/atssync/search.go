package atssync

import (
	"context"

	"ats-sync/internal/mapping"
)

// Search exposes the read side of both sync clients for admin previews.
type Search struct {
	Jobs       *JobSync
	Candidates *CandidateSync
}

func (s Search) SearchJobs(ctx context.Context, f JobFilter) PullJobsResult {
	return s.Jobs.Pull(ctx, f)
}

func (s Search) SearchCandidates(ctx context.Context, criteria mapping.CandidateCriteria) PullCandidatesResult {
	return s.Candidates.Pull(ctx, criteria)
}
