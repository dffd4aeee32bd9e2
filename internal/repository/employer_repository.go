package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ats-sync/internal/database"
	"ats-sync/internal/database/postgres"
	"ats-sync/internal/domain/job"
)

var ErrEmployerNotFound = errors.New("employer not found")

type EmployerRepository interface {
	Create(ctx context.Context, e *job.Employer) error
	GetByID(ctx context.Context, id uuid.UUID) (job.Employer, error)
	FindByExternalCompanyID(ctx context.Context, companyID int64) (job.Employer, error)
	SetExternalCompanyID(ctx context.Context, id uuid.UUID, companyID int64) error
}

type PostgresEmployerRepository struct {
	db database.DB
}

func NewPostgresEmployerRepository(db database.DB) *PostgresEmployerRepository {
	return &PostgresEmployerRepository{db: db}
}

func (r *PostgresEmployerRepository) Create(ctx context.Context, e *job.Employer) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now

	_, err := r.db.Exec(ctx,
		`INSERT INTO employers (`+employerColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.CompanyName, e.Email, e.Phone, e.State, e.Country, e.ExternalCompanyID, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert employer: %w", err)
	}
	return nil
}

const employerColumns = `id, company_name, email, phone, state, country, external_company_id, created_at, updated_at`

func (r *PostgresEmployerRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Employer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+employerColumns+` FROM employers WHERE id = $1`, id)
	return scanEmployer(row)
}

func (r *PostgresEmployerRepository) FindByExternalCompanyID(ctx context.Context, companyID int64) (job.Employer, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+employerColumns+` FROM employers WHERE external_company_id = $1 ORDER BY created_at LIMIT 1`,
		companyID,
	)
	return scanEmployer(row)
}

func (r *PostgresEmployerRepository) SetExternalCompanyID(ctx context.Context, id uuid.UUID, companyID int64) error {
	n, err := r.db.Exec(ctx,
		`UPDATE employers SET external_company_id = $2, updated_at = now() WHERE id = $1`,
		id, companyID,
	)
	if err != nil {
		return fmt.Errorf("set external company id: %w", err)
	}
	if n == 0 {
		return ErrEmployerNotFound
	}
	return nil
}

func scanEmployer(row database.Row) (job.Employer, error) {
	var e job.Employer
	err := row.Scan(&e.ID, &e.CompanyName, &e.Email, &e.Phone, &e.State, &e.Country, &e.ExternalCompanyID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if postgres.IsNoRows(err) {
			return job.Employer{}, ErrEmployerNotFound
		}
		return job.Employer{}, err
	}
	return e, nil
}
