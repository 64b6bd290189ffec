// Package export writes atoms, step tables and plans for downstream tools.
package export

import (
	"encoding/json"
	"io"

	"github.com/kilianp07/skyplan/core/atoms"
	"github.com/kilianp07/skyplan/core/model"
	"github.com/kilianp07/skyplan/core/plan"
)

// ObservationAtoms is the atoms export of one observation.
type ObservationAtoms struct {
	ObservationID string        `json:"observation_id"`
	Mode          string        `json:"mode,omitempty"`
	Blocks        []atoms.Block `json:"blocks,omitempty"`
	Atoms         []model.Atom  `json:"atoms"`
	Error         string        `json:"error,omitempty"`
}

// WriteAtomsJSON writes the atoms of each observation to w.
func WriteAtomsJSON(w io.Writer, obs []ObservationAtoms) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(obs)
}

// PlansDocument is the JSON export of one night.
type PlansDocument struct {
	RunID string          `json:"run_id,omitempty"`
	Night int             `json:"night"`
	Plans []plan.Snapshot `json:"plans"`
}

// WritePlansJSON writes the plans of one night to w.
func WritePlansJSON(w io.Writer, doc PlansDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
