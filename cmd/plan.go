package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/skyplan/app"
	"github.com/kilianp07/skyplan/core/plan"
	"github.com/kilianp07/skyplan/pkg/export"
	"github.com/kilianp07/skyplan/pkg/odb"
)

var (
	nightsPath string
	nightIndex int
)

var planCmd = &cobra.Command{
	Use:   "plan [observations]",
	Short: "Segment observations and fill the night plans",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&nightsPath, "nights", "n", "", "night events file")
	planCmd.Flags().IntVar(&nightIndex, "night", 0, "night index")
	_ = planCmd.MarkFlagRequired("nights")
	addProgramFlag(planCmd)
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	nights, err := odb.LoadNightEvents(nightsPath)
	if err != nil {
		return err
	}
	return withService(func(ctx context.Context, svc *app.Service) error {
		raws, err := observations(ctx, svc, args)
		if err != nil {
			return err
		}
		svc.ServeMetrics(ctx)
		out, err := svc.Plan(ctx, raws, nights, nightIndex)
		if err != nil {
			return fmt.Errorf("plan night %d: %w", nightIndex, err)
		}
		doc := export.PlansDocument{RunID: out.RunID, Night: out.Night, Plans: snapshots(out.Plans)}
		return export.WritePlansJSON(cmd.OutOrStdout(), doc)
	})
}

func snapshots(ps *plan.Plans) []plan.Snapshot {
	out := make([]plan.Snapshot, 0, len(ps.All()))
	for _, p := range ps.All() {
		out = append(out, p.Snapshot())
	}
	return out
}
