package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ats-sync/internal/app"
	"ats-sync/internal/config"
	"ats-sync/internal/domain"
	"ats-sync/internal/pkg/logger"
)

var recordKinds = []string{"jobs", "candidates"}

func newSyncCmd(direction, short string) *cobra.Command {
	var enable bool

	cmd := &cobra.Command{
		Use:       direction + " <jobs|candidates>",
		Short:     short,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: recordKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := runName(direction, args[0])
			if err != nil {
				return err
			}
			return runSync(cmd, run, enable)
		},
	}
	cmd.Flags().BoolVar(&enable, "enable", false, "enable the ATS integration for this run regardless of configuration")
	return cmd
}

func runName(direction, kind string) (domain.RunName, error) {
	run := domain.RunName(direction + "_" + kind)
	if !run.Valid() {
		return "", fmt.Errorf("unknown sync %s %s", direction, kind)
	}
	return run, nil
}

func runSync(cmd *cobra.Command, run domain.RunName, enable bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	zl, err := logger.New(cfg.App.Environment)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	c, err := app.NewContainer(cfg, zl)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			zl.Warnw("cleanup error", "error", err)
		}
	}()

	if enable {
		c.Flags.SetIntegration(true)
	}

	report, err := c.Reconciler.Run(cmd.Context(), run, domain.TriggerCLI)
	if err != nil {
		return fmt.Errorf("%s: %w", run, err)
	}
	return printJSON(cmd, report)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
