package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "atssync",
	Short: "Run External ATS synchronization from the command line",
	Long: `atssync runs the same batch syncs the server schedules, once, in the
foreground, and prints the batch report as JSON.

Examples:
  atssync push jobs            # push new and recently changed jobs
  atssync pull candidates      # pull candidates from the ATS
  atssync push jobs --enable   # run even if ATS_INTEGRATION_ENABLED=false
  atssync migrate              # apply pending database migrations
  atssync seed                 # insert development employers and jobs`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(newSyncCmd("push", "Push local records to the ATS"))
	rootCmd.AddCommand(newSyncCmd("pull", "Pull records from the ATS into the local store"))
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
