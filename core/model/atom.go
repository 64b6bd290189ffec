package model

import "time"

// Resources describes what an atom needs from the telescope.
type Resources struct {
	Instrument string `json:"inst"`
	Filter     string `json:"filter"`
	Disperser  string `json:"disperser"`
	FPU        string `json:"fpu"`
}

// BoundaryReason records why an atom was started.
type BoundaryReason string

const (
	ReasonFirstStep  BoundaryReason = "first step"
	ReasonWavelength BoundaryReason = "wavelength"
	ReasonExposure   BoundaryReason = "exposure time change"
	ReasonOffsets    BoundaryReason = "offset pattern"
)

// Atom is the smallest part of a sequence the scheduler places as a whole.
type Atom struct {
	ID int `json:"id"`
	// StartStep and EndStep delimit the half-open step span [StartStep, EndStep).
	StartStep   int              `json:"start_step"`
	EndStep     int              `json:"end_step"`
	ExecTime    time.Duration    `json:"exec_time"`
	ProgramTime time.Duration    `json:"prog_time"`
	PartnerTime time.Duration    `json:"part_time"`
	Class       ObsClass         `json:"class"`
	QAState     QAState          `json:"qa_state"`
	Observed    bool             `json:"observed"`
	Guided      bool             `json:"guide_state"`
	Wavelength  float64          `json:"wavelength"`
	Resources   Resources        `json:"required_resources"`
	Reasons     []BoundaryReason `json:"reasons,omitempty"`
}

// Steps returns the number of steps in the atom.
func (a Atom) Steps() int { return a.EndStep - a.StartStep }
