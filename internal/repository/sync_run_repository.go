package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ats-sync/internal/database"
	"ats-sync/internal/domain"
)

type SyncRunRepository interface {
	Start(ctx context.Context, run domain.RunName, trigger domain.Trigger, startedAt time.Time) (string, error)
	Finish(ctx context.Context, id string, report domain.BatchReport, runErr error) error
	ListRecent(ctx context.Context, limit int) ([]domain.SyncRun, error)
}

type PostgresSyncRunRepository struct {
	db database.DB
}

func NewPostgresSyncRunRepository(db database.DB) *PostgresSyncRunRepository {
	return &PostgresSyncRunRepository{db: db}
}

func (r *PostgresSyncRunRepository) Start(ctx context.Context, run domain.RunName, trigger domain.Trigger, startedAt time.Time) (string, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO sync_runs (id, run, trigger, status, started_at) VALUES ($1, $2, $3, $4, $5)`,
		id, string(run), string(trigger), string(domain.RunStatusRunning), startedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert sync run: %w", err)
	}
	return id.String(), nil
}

// Finish stores the report. A non-nil runErr marks the run failed even if
// some records were processed.
func (r *PostgresSyncRunRepository) Finish(ctx context.Context, id string, report domain.BatchReport, runErr error) error {
	runID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid sync run id %q: %w", id, err)
	}

	details := report.Details
	if details == nil {
		details = []domain.RecordOutcome{}
	}
	b, err := json.Marshal(details)
	if err != nil {
		return err
	}

	status := domain.RunStatusCompleted
	msg := ""
	if runErr != nil {
		status = domain.RunStatusFailed
		msg = runErr.Error()
	}
	finished := report.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	_, err = r.db.Exec(ctx,
		`UPDATE sync_runs
		 SET status = $2, total = $3, success = $4, failed = $5, error = $6, details = $7, finished_at = $8
		 WHERE id = $1`,
		runID, string(status), report.Total, report.Success, report.Failed, msg, b, finished.UTC(),
	)
	if err != nil {
		return fmt.Errorf("finish sync run: %w", err)
	}
	return nil
}

func (r *PostgresSyncRunRepository) ListRecent(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, run, trigger, status, total, success, failed, error, details, started_at, finished_at
		 FROM sync_runs
		 ORDER BY started_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.SyncRun, 0)
	for rows.Next() {
		var (
			s                    domain.SyncRun
			id                   uuid.UUID
			run, trigger, status string
			details              []byte
		)
		if err := rows.Scan(&id, &run, &trigger, &status, &s.Total, &s.Success, &s.Failed, &s.Error, &details, &s.StartedAt, &s.FinishedAt); err != nil {
			return nil, err
		}
		s.ID = id.String()
		s.Run = domain.RunName(run)
		s.Trigger = domain.Trigger(trigger)
		s.Status = domain.RunStatus(status)
		s.Details = []domain.RecordOutcome{}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &s.Details); err != nil {
				return nil, fmt.Errorf("decode sync run details: %w", err)
			}
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
