package atssync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ats-sync/internal/domain"
	"ats-sync/internal/events"
	"ats-sync/internal/pkg/logger"
	"ats-sync/internal/repository"
)

// Consumer pushes a record to the ATS after it changed locally. Sync failures
// are logged and swallowed; the batch runs retry them.
type Consumer struct {
	jobs       *JobSync
	candidates *CandidateSync
	jobRepo    repository.JobRepository
	candRepo   repository.CandidateRepository
	logger     *zap.SugaredLogger
}

func NewConsumer(jobs *JobSync, candidates *CandidateSync, jobRepo repository.JobRepository, candRepo repository.CandidateRepository, log *zap.SugaredLogger) *Consumer {
	return &Consumer{
		jobs:       jobs,
		candidates: candidates,
		jobRepo:    jobRepo,
		candRepo:   candRepo,
		logger:     logger.OrNop(log),
	}
}

// Handle returns an error only when the event cannot be processed at all:
// unknown kind, or the local record failed to load.
func (c *Consumer) Handle(ctx context.Context, evt events.RecordUpserted) error {
	var (
		res domain.SyncResult
		err error
	)

	switch evt.Kind {
	case events.KindJob:
		j, lerr := c.jobRepo.GetByID(ctx, evt.LocalID)
		if lerr != nil {
			return fmt.Errorf("load job %s: %w", evt.LocalID, lerr)
		}
		res, err = c.jobs.Push(ctx, &j)
	case events.KindCandidate:
		cand, lerr := c.candRepo.GetByID(ctx, evt.LocalID)
		if lerr != nil {
			return fmt.Errorf("load candidate %s: %w", evt.LocalID, lerr)
		}
		res, err = c.candidates.Push(ctx, &cand)
	default:
		return fmt.Errorf("unknown sync event kind %q", evt.Kind)
	}

	if err != nil {
		c.logger.Errorw("real-time sync misconfigured", "kind", evt.Kind, "local_id", evt.LocalID, "error", err)
		return nil
	}
	switch {
	case res.Error == domain.MessageIntegrationDisabled:
		c.logger.Debugw("real-time sync skipped, integration disabled", "kind", evt.Kind, "local_id", evt.LocalID)
	case !res.Success:
		c.logger.Warnw("real-time sync failed", "kind", evt.Kind, "local_id", evt.LocalID, "error", res.Error)
	case res.Warning != "":
		c.logger.Warnw("real-time sync partially failed", "kind", evt.Kind, "local_id", evt.LocalID, "external_id", res.ExternalID, "warning", res.Warning)
	default:
		c.logger.Debugw("real-time sync done", "kind", evt.Kind, "local_id", evt.LocalID, "external_id", res.ExternalID)
	}
	return nil
}
