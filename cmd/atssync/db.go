package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ats-sync/internal/config"
	"ats-sync/internal/database/migration"
	dbpostgres "ats-sync/internal/database/postgres"
	"ats-sync/internal/database/seeder"
	"ats-sync/internal/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		zl, err := logger.New(cfg.App.Environment)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer func() { _ = zl.Sync() }()

		db, err := dbpostgres.Connect(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := migration.NewRunner(zl.Named("migration")).Run(cmd.Context(), db)
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]int{"applied": applied})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert development employers and jobs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		zl, err := logger.New(cfg.App.Environment)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer func() { _ = zl.Sync() }()

		db, err := dbpostgres.Connect(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		runner := seeder.Runner{Seeders: seeder.Defaults(), Logger: zl.Named("seeder")}
		return runner.Run(cmd.Context(), db)
	},
}
