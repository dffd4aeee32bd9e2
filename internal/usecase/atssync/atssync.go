// Package atssync moves jobs and candidates between the local database and
// the External ATS: single-record push and pull, resume upload, batch
// reconciliation and the real-time event consumer.
package atssync

import (
	"context"
	"errors"

	"ats-sync/internal/domain"
	"ats-sync/internal/infrastructure/ats"
)

var ErrRunInProgress = errors.New("atssync: run already in progress")

// JobGateway is the part of the ATS client the job sync uses.
type JobGateway interface {
	Enabled() bool
	CreateJob(ctx context.Context, in ats.JobPayload) (string, error)
	UpdateJob(ctx context.Context, externalID string, in ats.JobPayload) error
	SearchJobs(ctx context.Context, filter map[string]any) ([]ats.JobRecord, error)
}

type CandidateGateway interface {
	Enabled() bool
	CreateCandidate(ctx context.Context, in ats.CandidatePayload) (string, error)
	UpdateCandidate(ctx context.Context, externalID string, in ats.CandidatePayload) error
	SearchCandidates(ctx context.Context, filter map[string]any) ([]ats.CandidateRecord, error)
	UploadDocument(ctx context.Context, externalID, fileName string, content []byte) error
}

type CompanyEnsurer interface {
	Ensure(ctx context.Context, info ats.CompanyInfo) (int64, error)
}

// settle turns an error from the ATS layer into a SyncResult. Only
// configuration errors are returned to the caller; everything else lives in
// the result.
func settle(err error) (domain.SyncResult, error) {
	switch {
	case err == nil:
		return domain.SyncResult{Success: true}, nil
	case errors.Is(err, ats.ErrConfiguration):
		return domain.Failed(err), err
	case errors.Is(err, ats.ErrDisabled):
		return domain.Disabled(), nil
	default:
		return domain.Failed(err), nil
	}
}
