package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ats-sync/internal/database"
	"ats-sync/internal/database/postgres"
	"ats-sync/internal/domain/job"
)

type JobRepository interface {
	Create(ctx context.Context, j *job.Job) error
	Update(ctx context.Context, j *job.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (job.Job, error)
	FindByExternal(ctx context.Context, source, externalID string) (job.Job, error)
	ListPendingSync(ctx context.Context, updatedSince time.Time, limit int) ([]job.Job, error)
	SetExternalRef(ctx context.Context, id uuid.UUID, externalID, source string) error
	MarkSyncAttempted(ctx context.Context, id uuid.UUID, at time.Time) error
}

const jobColumns = `id, employer_id, title, description, employment_type, pay_min, pay_max,
	city, state, postal_code, country, skills, experience, openings, status,
	external_id, external_source, created_at, updated_at`

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

func (r *PostgresJobRepository) Create(ctx context.Context, j *job.Job) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = job.StatusOpen
	}
	if j.Skills == nil {
		j.Skills = []string{}
	}
	now := time.Now().UTC()
	j.CreatedAt, j.UpdatedAt = now, now

	payMin, payMax := payRangeArgs(j.PayRange)
	city, state, postal, country := locationArgs(j.Location)

	_, err := r.db.Exec(ctx,
		`INSERT INTO jobs (`+jobColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		j.ID, j.EmployerID, j.Title, j.Description, employmentTypeArg(j.EmploymentType), payMin, payMax,
		city, state, postal, country, j.Skills, j.Experience, j.Openings, string(j.Status),
		j.ExternalID, j.ExternalSource, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// Update writes every mutable column and bumps updated_at. The external
// reference is only touched through SetExternalRef.
func (r *PostgresJobRepository) Update(ctx context.Context, j *job.Job) error {
	if j.Skills == nil {
		j.Skills = []string{}
	}
	j.UpdatedAt = time.Now().UTC()

	payMin, payMax := payRangeArgs(j.PayRange)
	city, state, postal, country := locationArgs(j.Location)

	n, err := r.db.Exec(ctx,
		`UPDATE jobs SET
			title = $2, description = $3, employment_type = $4, pay_min = $5, pay_max = $6,
			city = $7, state = $8, postal_code = $9, country = $10, skills = $11,
			experience = $12, openings = $13, status = $14, updated_at = $15
		 WHERE id = $1`,
		j.ID, j.Title, j.Description, employmentTypeArg(j.EmploymentType), payMin, payMax,
		city, state, postal, country, j.Skills, j.Experience, j.Openings, string(j.Status), j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if n == 0 {
		return job.ErrNotFound
	}
	return nil
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Job, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (r *PostgresJobRepository) FindByExternal(ctx context.Context, source, externalID string) (job.Job, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE external_source = $1 AND external_id = $2`,
		strings.TrimSpace(source), strings.TrimSpace(externalID),
	)
	return scanJob(row)
}

// ListPendingSync returns never-synced jobs and jobs updated since the given
// time. Jobs never attempted come first, then the least recently attempted.
func (r *PostgresJobRepository) ListPendingSync(ctx context.Context, updatedSince time.Time, limit int) ([]job.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE external_id IS NULL OR updated_at >= $1
		 ORDER BY sync_attempted_at ASC NULLS FIRST, updated_at ASC
		 LIMIT $2`,
		updatedSince, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresJobRepository) SetExternalRef(ctx context.Context, id uuid.UUID, externalID, source string) error {
	n, err := r.db.Exec(ctx,
		`UPDATE jobs SET external_id = $2, external_source = $3 WHERE id = $1`,
		id, strings.TrimSpace(externalID), strings.TrimSpace(source),
	)
	if err != nil {
		return fmt.Errorf("set job external ref: %w", err)
	}
	if n == 0 {
		return job.ErrNotFound
	}
	return nil
}

func scanJob(row database.Row) (job.Job, error) {
	var (
		j                            job.Job
		employmentType               *string
		payMin, payMax               *float64
		city, state, postal, country *string
		status                       string
	)
	err := row.Scan(
		&j.ID, &j.EmployerID, &j.Title, &j.Description, &employmentType, &payMin, &payMax,
		&city, &state, &postal, &country, &j.Skills, &j.Experience, &j.Openings, &status,
		&j.ExternalID, &j.ExternalSource, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return job.Job{}, job.ErrNotFound
		}
		return job.Job{}, err
	}

	if employmentType != nil {
		et := job.EmploymentType(*employmentType)
		j.EmploymentType = &et
	}
	if payMin != nil || payMax != nil {
		j.PayRange = &job.PayRange{Min: payMin, Max: payMax}
	}
	if city != nil || state != nil || postal != nil || country != nil {
		j.Location = &job.Location{City: city, State: state, PostalCode: postal, Country: country}
	}
	j.Status = job.Status(status)
	if j.Skills == nil {
		j.Skills = []string{}
	}
	return j, nil
}

func employmentTypeArg(t *job.EmploymentType) *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}

func payRangeArgs(p *job.PayRange) (*float64, *float64) {
	if p == nil {
		return nil, nil
	}
	return p.Min, p.Max
}

func locationArgs(l *job.Location) (city, state, postal, country *string) {
	if l == nil {
		return nil, nil, nil, nil
	}
	return l.City, l.State, l.PostalCode, l.Country
}

// MarkSyncAttempted leaves updated_at alone so the attempt itself does not
// put the job back in the update window.
func (r *PostgresJobRepository) MarkSyncAttempted(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE jobs SET sync_attempted_at = $2 WHERE id = $1`, id, at.UTC())
	if err != nil {
		return fmt.Errorf("mark job sync attempt: %w", err)
	}
	return nil
}
