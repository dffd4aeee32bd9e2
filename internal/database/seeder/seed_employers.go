package seeder

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ats-sync/internal/database"
)

type seedEmployer struct {
	Name    string
	Email   string
	Phone   string
	State   string
	Country string
}

var seedEmployers = []seedEmployer{
	{Name: "Acme Robotics", Email: "talent@acme.example", Phone: "5125550100", State: "TX", Country: "US"},
	{Name: "Northwind Health", Email: "jobs@northwind.example", Phone: "2065550111", State: "WA", Country: "US"},
	{Name: "Globex Logistics", Email: "hr@globex.example", Phone: "3125550122", State: "IL", Country: "US"},
}

// seedID derives a stable id so reseeding never duplicates rows.
func seedID(kind, name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("seed:"+kind+":"+name))
}

type EmployersSeeder struct{}

func (EmployersSeeder) Name() string { return "employers" }

func (EmployersSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "employers", "id", "company_name", "email", "phone", "state", "country"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, e := range seedEmployers {
		_, err := tx.Exec(ctx,
			`INSERT INTO employers (id, company_name, email, phone, state, country)
			 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
			seedID("employer", e.Name), e.Name, e.Email, e.Phone, e.State, e.Country,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
