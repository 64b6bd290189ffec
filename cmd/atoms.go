package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/skyplan/core/atoms"
	"github.com/kilianp07/skyplan/pkg/export"
)

var atomsCmd = &cobra.Command{
	Use:   "atoms <table.csv>",
	Short: "Rebuild atoms from an exported step table",
	Args:  cobra.ExactArgs(1),
	RunE:  runAtoms,
}

func init() {
	rootCmd.AddCommand(atomsCmd)
}

func runAtoms(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	tables, err := export.ReadStepTableCSV(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	out := make([]export.ObservationAtoms, 0, len(tables))
	for _, t := range tables {
		oa := export.ObservationAtoms{ObservationID: t.ObservationID}
		if oa.Atoms, err = atoms.FromRows(t.Rows); err != nil {
			oa.Error = err.Error()
		}
		out = append(out, oa)
	}
	return export.WriteAtomsJSON(cmd.OutOrStdout(), out)
}
