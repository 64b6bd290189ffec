package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/skyplan/app"
	"github.com/kilianp07/skyplan/pkg/export"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored planning runs",
}

var runsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsLs,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the plans of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsCmd.AddCommand(runsLsCmd, runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

var errNoStore = errors.New("store is disabled in the configuration")

func runRunsLs(cmd *cobra.Command, args []string) error {
	return withService(func(ctx context.Context, svc *app.Service) error {
		if svc.Store() == nil {
			return errNoStore
		}
		runs, err := svc.Store().ListRuns(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	})
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	return withService(func(ctx context.Context, svc *app.Service) error {
		if svc.Store() == nil {
			return errNoStore
		}
		run, err := svc.Store().LoadRun(ctx, args[0])
		if err != nil {
			return fmt.Errorf("run %s: %w", args[0], err)
		}
		return export.WritePlansJSON(cmd.OutOrStdout(), export.PlansDocument{RunID: run.ID, Night: run.Night, Plans: run.Plans})
	})
}
