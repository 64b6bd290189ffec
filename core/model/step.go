package model

import (
	"strings"
	"time"
)

// Calibration observe types. Steps of these types are excluded from the
// sky offset series.
var calibrationTypes = []string{"FLAT", "ARC", "DARK", "BIAS"}

// Step is the canonical view of one sequence step.
type Step struct {
	Instrument   Instrument    `json:"instrument"`
	Disperser    string        `json:"disperser"`
	Filter       string        `json:"filter"`
	Wavelength   float64       `json:"wavelength"`
	FPU          string        `json:"fpu"`
	P            float64       `json:"p"`
	Q            float64       `json:"q"`
	ExposureTime float64       `json:"exposure_time"`
	Coadds       int           `json:"coadds"`
	Class        ObsClass      `json:"class"`
	ObserveType  string        `json:"observe_type"`
	DataLabel    string        `json:"data_label"`
	TotalTime    time.Duration `json:"total_time"`
	Guided       bool          `json:"guided"`
}

// Sky reports whether the step is an on-sky exposure, i.e. not a
// flat, arc, dark or bias.
func (s Step) Sky() bool {
	t := strings.ToUpper(s.ObserveType)
	for _, c := range calibrationTypes {
		if t == c {
			return false
		}
	}
	return true
}

// Resources returns the resources the step requires.
func (s Step) Resources() Resources {
	return Resources{Instrument: s.Instrument.String(), Filter: s.Filter, Disperser: s.Disperser, FPU: s.FPU}
}

// ObsLog maps data labels to the observed QA state.
type ObsLog map[string]QAState

// State returns the logged QA state of label, QANone when unlogged.
func (l ObsLog) State(label string) QAState {
	if s, ok := l[label]; ok {
		return s
	}
	return QANone
}

// Sequence is the ordered list of canonical steps of one observation.
type Sequence struct {
	ObservationID string     `json:"observation_id"`
	Instrument    Instrument `json:"instrument"`
	Steps         []Step     `json:"steps"`
	Log           ObsLog     `json:"log,omitempty"`
}

// Wavelengths returns the per-step wavelength array.
func (s Sequence) Wavelengths() []float64 {
	out := make([]float64, len(s.Steps))
	for i, st := range s.Steps {
		out[i] = st.Wavelength
	}
	return out
}

// SkyOffsets returns the p and q series of the on-sky steps in steps.
func SkyOffsets(steps []Step) (p, q []float64) {
	for _, st := range steps {
		if !st.Sky() {
			continue
		}
		p = append(p, st.P)
		q = append(q, st.Q)
	}
	return p, q
}
