package seeder

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ats-sync/internal/database"
	"ats-sync/internal/pkg/logger"
)

type Runner struct {
	Seeders []Seeder
	Logger  *zap.SugaredLogger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	log := logger.OrNop(r.Logger)
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		log.Infow("seeded", "seeder", s.Name())
	}
	return nil
}
