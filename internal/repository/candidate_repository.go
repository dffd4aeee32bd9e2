package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ats-sync/internal/database"
	"ats-sync/internal/database/postgres"
	"ats-sync/internal/domain/candidate"
)

type CandidateRepository interface {
	Create(ctx context.Context, c *candidate.Candidate) error
	Update(ctx context.Context, c *candidate.Candidate) error
	GetByID(ctx context.Context, id uuid.UUID) (candidate.Candidate, error)
	GetByEmail(ctx context.Context, email string) (candidate.Candidate, error)
	FindByExternal(ctx context.Context, source, externalID string) (candidate.Candidate, error)
	ListPendingSync(ctx context.Context, updatedSince time.Time, limit int) ([]candidate.Candidate, error)
	SetExternalRef(ctx context.Context, id uuid.UUID, externalID, source string) error
	MarkSyncAttempted(ctx context.Context, id uuid.UUID, at time.Time) error
}

const candidateColumns = `id, name, email, phone, address, city, state, country, postal_code,
	headline, desired_job_title, experience, skills, pay_scale, pay_type, resume_link,
	password_hash, external_id, external_source, created_at, updated_at`

type PostgresCandidateRepository struct {
	db database.DB
}

func NewPostgresCandidateRepository(db database.DB) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{db: db}
}

func (r *PostgresCandidateRepository) Create(ctx context.Context, c *candidate.Candidate) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Skills == nil {
		c.Skills = []string{}
	}
	c.Email = candidate.NormalizeEmail(c.Email)
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	_, err := r.db.Exec(ctx,
		`INSERT INTO candidates (`+candidateColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.City, c.State, c.Country, c.PostalCode,
		c.Headline, c.DesiredJobTitle, c.Experience, c.Skills, c.PayScale, c.PayType, c.ResumeLink,
		c.PasswordHash, c.ExternalID, c.ExternalSource, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "candidates_email_uq") {
			return candidate.ErrEmailDuplicate
		}
		return fmt.Errorf("insert candidate: %w", err)
	}
	return nil
}

// Update writes the profile columns and the resume link. An empty
// PasswordHash keeps the stored one; the external reference is not touched.
func (r *PostgresCandidateRepository) Update(ctx context.Context, c *candidate.Candidate) error {
	if c.Skills == nil {
		c.Skills = []string{}
	}
	c.Email = candidate.NormalizeEmail(c.Email)
	c.UpdatedAt = time.Now().UTC()

	n, err := r.db.Exec(ctx,
		`UPDATE candidates SET
			name = $2, email = $3, phone = $4, address = $5, city = $6, state = $7,
			country = $8, postal_code = $9, headline = $10, desired_job_title = $11,
			experience = $12, skills = $13, pay_scale = $14, pay_type = $15, resume_link = $16,
			password_hash = COALESCE(NULLIF($17, ''), password_hash), updated_at = $18
		 WHERE id = $1`,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.City, c.State,
		c.Country, c.PostalCode, c.Headline, c.DesiredJobTitle,
		c.Experience, c.Skills, c.PayScale, c.PayType, c.ResumeLink,
		c.PasswordHash, c.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "candidates_email_uq") {
			return candidate.ErrEmailDuplicate
		}
		return fmt.Errorf("update candidate: %w", err)
	}
	if n == 0 {
		return candidate.ErrNotFound
	}
	return nil
}

func (r *PostgresCandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (candidate.Candidate, error) {
	row := r.db.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	return scanCandidate(row)
}

func (r *PostgresCandidateRepository) GetByEmail(ctx context.Context, email string) (candidate.Candidate, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE email = $1`,
		candidate.NormalizeEmail(email),
	)
	return scanCandidate(row)
}

func (r *PostgresCandidateRepository) FindByExternal(ctx context.Context, source, externalID string) (candidate.Candidate, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE external_source = $1 AND external_id = $2`,
		strings.TrimSpace(source), strings.TrimSpace(externalID),
	)
	return scanCandidate(row)
}

func (r *PostgresCandidateRepository) ListPendingSync(ctx context.Context, updatedSince time.Time, limit int) ([]candidate.Candidate, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidates
		 WHERE external_id IS NULL OR updated_at >= $1
		 ORDER BY sync_attempted_at ASC NULLS FIRST, updated_at ASC
		 LIMIT $2`,
		updatedSince, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]candidate.Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresCandidateRepository) SetExternalRef(ctx context.Context, id uuid.UUID, externalID, source string) error {
	n, err := r.db.Exec(ctx,
		`UPDATE candidates SET external_id = $2, external_source = $3 WHERE id = $1`,
		id, strings.TrimSpace(externalID), strings.TrimSpace(source),
	)
	if err != nil {
		return fmt.Errorf("set candidate external ref: %w", err)
	}
	if n == 0 {
		return candidate.ErrNotFound
	}
	return nil
}

func (r *PostgresCandidateRepository) MarkSyncAttempted(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE candidates SET sync_attempted_at = $2 WHERE id = $1`, id, at.UTC())
	if err != nil {
		return fmt.Errorf("mark candidate sync attempt: %w", err)
	}
	return nil
}

func scanCandidate(row database.Row) (candidate.Candidate, error) {
	var c candidate.Candidate
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.City, &c.State, &c.Country, &c.PostalCode,
		&c.Headline, &c.DesiredJobTitle, &c.Experience, &c.Skills, &c.PayScale, &c.PayType, &c.ResumeLink,
		&c.PasswordHash, &c.ExternalID, &c.ExternalSource, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return candidate.Candidate{}, candidate.ErrNotFound
		}
		return candidate.Candidate{}, err
	}
	if c.Skills == nil {
		c.Skills = []string{}
	}
	return c, nil
}
