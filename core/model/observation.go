package model

import "time"

// Observation is an atomized observation ready for allocation.
type Observation struct {
	ID         string     `json:"id"`
	Site       Site       `json:"site"`
	Band       int        `json:"band"`
	ToO        bool       `json:"too"`
	Instrument Instrument `json:"instrument"`
	Atoms      []Atom     `json:"atoms"`
}

// ObservationID returns the observation identifier.
func (o Observation) ObservationID() string { return o.ID }

// InstrumentTag returns the instrument used by the observation.
func (o Observation) InstrumentTag() Instrument { return o.Instrument }

// ExecTime sums the execution time of atoms[start..end], both inclusive.
func (o Observation) ExecTime(start, end int) time.Duration {
	var d time.Duration
	for i := start; i <= end && i < len(o.Atoms); i++ {
		d += o.Atoms[i].ExecTime
	}
	return d
}

// FirstUnobserved returns the index of the first atom not yet observed,
// or -1 when all atoms are observed.
func (o Observation) FirstUnobserved() int {
	for i, a := range o.Atoms {
		if !a.Observed {
			return i
		}
	}
	return -1
}
