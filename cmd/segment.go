package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/skyplan/app"
	"github.com/kilianp07/skyplan/core/atoms"
	"github.com/kilianp07/skyplan/core/scheduler"
	"github.com/kilianp07/skyplan/pkg/export"
)

var segmentFormat string

var segmentCmd = &cobra.Command{
	Use:   "segment [observations]",
	Short: "Split observation sequences into atoms",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSegment,
}

func init() {
	segmentCmd.Flags().StringVarP(&segmentFormat, "format", "f", "json", "output format: json or csv")
	addProgramFlag(segmentCmd)
	rootCmd.AddCommand(segmentCmd)
}

func runSegment(cmd *cobra.Command, args []string) error {
	if segmentFormat != "json" && segmentFormat != "csv" {
		return fmt.Errorf("unknown format %q", segmentFormat)
	}
	return withService(func(ctx context.Context, svc *app.Service) error {
		raws, err := observations(ctx, svc, args)
		if err != nil {
			return err
		}
		results := svc.Segment(ctx, raws)
		if segmentFormat == "csv" {
			return export.WriteStepTableCSV(cmd.OutOrStdout(), stepTables(results))
		}
		return export.WriteAtomsJSON(cmd.OutOrStdout(), observationAtoms(results))
	})
}

func observationAtoms(results []scheduler.Result) []export.ObservationAtoms {
	out := make([]export.ObservationAtoms, 0, len(results))
	for _, r := range results {
		oa := export.ObservationAtoms{ObservationID: r.Observation.ID}
		if r.Err != nil {
			oa.Error = r.Err.Error()
		} else {
			oa.Mode = string(r.Segmentation.Mode)
			oa.Blocks = r.Segmentation.Blocks
			oa.Atoms = r.Segmentation.Atoms
		}
		out = append(out, oa)
	}
	return out
}

func stepTables(results []scheduler.Result) []export.StepTable {
	var out []export.StepTable
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		out = append(out, export.StepTable{ObservationID: r.Observation.ID, Rows: atoms.Rows(r.Sequence, r.Segmentation)})
	}
	return out
}
