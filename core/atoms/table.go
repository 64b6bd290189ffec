package atoms

import (
	"fmt"
	"time"

	"github.com/kilianp07/skyplan/core/model"
)

// StepRow is one line of the flat step table: a step, its logged QA state
// and the atom it was assigned to.
type StepRow struct {
	Atom         int            `json:"atom"`
	DataLabel    string         `json:"data_label"`
	Class        model.ObsClass `json:"class"`
	ObserveType  string         `json:"observe_type"`
	QAState      model.QAState  `json:"qa_state"`
	Instrument   string         `json:"instrument"`
	Filter       string         `json:"filter"`
	Disperser    string         `json:"disperser"`
	FPU          string         `json:"fpu"`
	Wavelength   float64        `json:"wavelength"`
	P            float64        `json:"p"`
	Q            float64        `json:"q"`
	ExposureTime float64        `json:"exposure_time"`
	Coadds       int            `json:"coadds"`
	ExecTime     time.Duration  `json:"exec_time"`
	Guided       bool           `json:"guided"`
}

func (r StepRow) resources() model.Resources {
	return model.Resources{Instrument: r.Instrument, Filter: r.Filter, Disperser: r.Disperser, FPU: r.FPU}
}

// Rows flattens seq and its segmentation into table rows.
func Rows(seq model.Sequence, seg Segmentation) []StepRow {
	rows := make([]StepRow, len(seq.Steps))
	for i, st := range seq.Steps {
		rows[i] = StepRow{
			Atom:         seg.StepAtom[i],
			DataLabel:    st.DataLabel,
			Class:        st.Class,
			ObserveType:  st.ObserveType,
			QAState:      seq.Log.State(st.DataLabel),
			Instrument:   st.Instrument.String(),
			Filter:       st.Filter,
			Disperser:    st.Disperser,
			FPU:          st.FPU,
			Wavelength:   st.Wavelength,
			P:            st.P,
			Q:            st.Q,
			ExposureTime: st.ExposureTime,
			Coadds:       st.Coadds,
			ExecTime:     st.TotalTime,
			Guided:       st.Guided,
		}
	}
	return rows
}

// FromRows rebuilds atoms from a step table. Rows of one atom must be
// contiguous and atom numbers must increase from 1. Boundary reasons are
// not part of the table and are left empty.
func FromRows(rows []StepRow) ([]model.Atom, error) {
	if len(rows) == 0 {
		return nil, &model.MalformedSequenceError{Reason: "empty step table"}
	}
	var atoms []model.Atom
	var open *accumulator
	for i, r := range rows {
		if open == nil || r.Atom != open.id {
			next := 1
			if open != nil {
				next = open.id + 1
			}
			if r.Atom != next {
				return nil, &model.MalformedSequenceError{
					Reason: fmt.Sprintf("row %d: atom %d out of order", i, r.Atom),
				}
			}
			if open != nil {
				atoms = append(atoms, open.close(r.Wavelength, r.resources()))
			}
			open = newAccumulator(r.Atom, i, nil)
		}
		open.add(r.Class, r.QAState, r.Guided, r.ExecTime)
	}
	last := rows[len(rows)-1]
	atoms = append(atoms, open.close(last.Wavelength, last.resources()))
	return atoms, nil
}
