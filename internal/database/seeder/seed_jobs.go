package seeder

import (
	"context"
	"fmt"

	"ats-sync/internal/database"
)

type seedJob struct {
	Employer       string
	Title          string
	Description    string
	EmploymentType string
	PayMin         float64
	PayMax         float64
	City           string
	State          string
	Country        string
	Skills         []string
	Experience     int
	Openings       int
}

var seedJobs = []seedJob{
	{
		Employer: "Acme Robotics", Title: "Backend Engineer", Description: "Build fleet telemetry services.",
		EmploymentType: "Full-time", PayMin: 120000, PayMax: 150000, City: "Austin", State: "TX", Country: "US",
		Skills: []string{"Go", "PostgreSQL"}, Experience: 3, Openings: 2,
	},
	{
		Employer: "Northwind Health", Title: "Data Analyst", Description: "Own clinical reporting.",
		EmploymentType: "Contract", PayMin: 60, PayMax: 80, City: "Seattle", State: "WA", Country: "US",
		Skills: []string{"SQL"}, Experience: 2, Openings: 1,
	},
	{
		Employer: "Globex Logistics", Title: "Operations Intern", Description: "Support the dispatch team.",
		EmploymentType: "Internship", City: "Chicago", State: "IL", Country: "US", Openings: 3,
	},
}

// JobsSeeder inserts unsynced open jobs; run after EmployersSeeder.
type JobsSeeder struct{}

func (JobsSeeder) Name() string { return "jobs" }

func (JobsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "jobs", "id", "employer_id", "title", "employment_type", "skills", "status"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, j := range seedJobs {
		var payMin, payMax *float64
		if j.PayMin > 0 || j.PayMax > 0 {
			payMin, payMax = &j.PayMin, &j.PayMax
		}
		skills := j.Skills
		if skills == nil {
			skills = []string{}
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO jobs (id, employer_id, title, description, employment_type, pay_min, pay_max,
				city, state, country, skills, experience, openings, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 'Open')
			 ON CONFLICT (id) DO NOTHING`,
			seedID("job", j.Employer+"/"+j.Title), seedID("employer", j.Employer),
			j.Title, j.Description, j.EmploymentType, payMin, payMax,
			j.City, j.State, j.Country, skills, j.Experience, j.Openings,
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
