package atoms

import (
	"time"

	"github.com/kilianp07/skyplan/core/model"
)

// accumulator collects the per-step contributions of the open atom.
type accumulator struct {
	id      int
	start   int
	end     int
	reasons []model.BoundaryReason

	exec    time.Duration
	program time.Duration
	partner time.Duration

	states  []model.QAState
	classes []model.ObsClass
	guided  []bool
}

func newAccumulator(id, start int, reasons []model.BoundaryReason) *accumulator {
	return &accumulator{id: id, start: start, end: start, reasons: reasons}
}

func (a *accumulator) add(class model.ObsClass, qa model.QAState, guided bool, d time.Duration) {
	a.end++
	a.states = append(a.states, qa)
	a.classes = append(a.classes, class)
	a.guided = append(a.guided, guided)
	a.exec += d
	if class.Partner() {
		a.partner += d
	} else {
		a.program += d
	}
}

// close resolves the atom. wavelength and res describe the step that ended
// it, which is the first step of the next atom or the last step of the
// sequence.
func (a *accumulator) close(wavelength float64, res model.Resources) model.Atom {
	qa := model.ResolveQAState(a.states)
	guided := false
	for _, g := range a.guided {
		guided = guided || g
	}
	return model.Atom{
		ID:          a.id,
		StartStep:   a.start,
		EndStep:     a.end,
		ExecTime:    a.exec,
		ProgramTime: a.program,
		PartnerTime: a.partner,
		Class:       model.ResolveObsClass(a.classes),
		QAState:     qa,
		Observed:    qa != model.QANone,
		Guided:      guided,
		Wavelength:  wavelength,
		Resources:   res,
		Reasons:     a.reasons,
	}
}
