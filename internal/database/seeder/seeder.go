// Package seeder inserts development data: a few employers and open jobs
// for the sync to push. Every seeder is idempotent.
package seeder

import (
	"context"

	"ats-sync/internal/database"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
