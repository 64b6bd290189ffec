package atoms

import (
	"fmt"

	"github.com/kilianp07/skyplan/core/mode"
	"github.com/kilianp07/skyplan/core/model"
	"github.com/kilianp07/skyplan/core/offsets"
)

// nirCutoff is the wavelength in microns above which an imaging sequence is
// treated as near infrared.
const nirCutoff = 1.0

// Block is a run of steps sharing one offset pattern.
type Block struct {
	Start   int             `json:"start"`
	End     int             `json:"end"`
	Pattern offsets.Pattern `json:"pattern"`
}

// Segmentation is the result of splitting one sequence.
type Segmentation struct {
	ObservationID string       `json:"observation_id"`
	Mode          mode.Mode    `json:"mode"`
	Blocks        []Block      `json:"blocks"`
	Atoms         []model.Atom `json:"atoms"`
	// StepAtom holds the atom ID of every step.
	StepAtom []int `json:"step_atom"`
}

type skySnapshot struct {
	exptime float64
	coadds  int
	p, q    float64
}

type segmenter struct {
	cfg        Config
	seq        model.Sequence
	blocks     []Block
	nirImaging bool

	block     int
	countdown int
	noffsets  int
	lastSky   *skySnapshot

	open     *accumulator
	atoms    []model.Atom
	stepAtom []int
}

// Segment splits seq into atoms. Every step lands in exactly one atom and
// atoms are numbered from 1 in step order.
func Segment(seq model.Sequence, cfg Config) (Segmentation, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Segmentation{}, err
	}
	if len(seq.Steps) == 0 {
		return Segmentation{}, &model.MalformedSequenceError{ObservationID: seq.ObservationID, Reason: "no steps"}
	}
	for i, st := range seq.Steps {
		if st.Instrument != seq.Instrument {
			return Segmentation{}, &model.MalformedSequenceError{
				ObservationID: seq.ObservationID,
				Reason:        fmt.Sprintf("step %d uses %s, sequence uses %s", i, st.Instrument, seq.Instrument),
			}
		}
	}

	m := mode.ClassifySequence(seq)
	s := &segmenter{
		cfg:        cfg,
		seq:        seq,
		blocks:     detectBlocks(seq, cfg.OffsetScope),
		nirImaging: m == mode.Imaging && allAbove(seq.Wavelengths(), nirCutoff),
		stepAtom:   make([]int, len(seq.Steps)),
	}
	s.countdown = s.blocks[0].Pattern.Lag
	for i := range seq.Steps {
		s.step(i)
	}
	s.closeOpen(seq.Steps[len(seq.Steps)-1])

	return Segmentation{
		ObservationID: seq.ObservationID,
		Mode:          m,
		Blocks:        s.blocks,
		Atoms:         s.atoms,
		StepAtom:      s.stepAtom,
	}, nil
}

func (s *segmenter) step(i int) {
	st := s.seq.Steps[i]
	if i == s.blocks[s.block].End {
		s.block++
		s.countdown = s.blocks[s.block].Pattern.Lag
	}
	lag := s.blocks[s.block].Pattern.Lag

	var reasons []model.BoundaryReason
	switch {
	case i == 0:
		reasons = append(reasons, model.ReasonFirstStep)
	case st.Wavelength != s.seq.Steps[i-1].Wavelength:
		reasons = append(reasons, model.ReasonWavelength)
	}

	if st.Sky() {
		if st.Class == model.ClassScience && s.lastSky != nil &&
			(st.ExposureTime != s.lastSky.exptime || st.Coadds != s.lastSky.coadds) {
			reasons = append(reasons, model.ReasonExposure)
		}
		if s.offsetBoundary(st, lag) {
			reasons = append(reasons, model.ReasonOffsets)
		}
		s.lastSky = &skySnapshot{exptime: st.ExposureTime, coadds: st.Coadds, p: st.P, q: st.Q}
	}

	if len(reasons) > 0 {
		s.closeOpen(st)
		s.open = newAccumulator(len(s.atoms)+1, i, reasons)
		// A calibration opening an atom at the end of a pattern restarts it,
		// so the following sky steps form a full cycle.
		if !st.Sky() && s.countdown == 0 {
			s.countdown = lag
		}
		s.noffsets = 1
	}
	s.open.add(st.Class, s.seq.Log.State(st.DataLabel), st.Guided, st.TotalTime)
	s.stepAtom[i] = s.open.id
}

// offsetBoundary advances the offset state for sky step st and reports
// whether it ends the current pattern.
func (s *segmenter) offsetBoundary(st model.Step, lag int) bool {
	if lag == 0 && s.cfg.ExptimeGroups {
		return false
	}
	if s.nirImaging && lag == 0 {
		// Without a pattern, near infrared imaging is split into sky pairs:
		// a boundary on every odd count of position changes.
		if s.lastSky != nil && st.P == s.lastSky.p && st.Q == s.lastSky.q {
			return false
		}
		s.noffsets++
		return s.noffsets%2 == 1
	}
	s.countdown--
	if s.countdown < 0 {
		s.countdown = lag - 1
		return true
	}
	return false
}

func (s *segmenter) closeOpen(trigger model.Step) {
	if s.open == nil {
		return
	}
	s.atoms = append(s.atoms, s.open.close(trigger.Wavelength, trigger.Resources()))
	s.open = nil
}

// detectBlocks runs offset detection over the configured scope. GPI
// sequences are never split on offsets.
func detectBlocks(seq model.Sequence, scope Scope) []Block {
	n := len(seq.Steps)
	detect := func(steps []model.Step) offsets.Pattern {
		if seq.Instrument == model.GPI {
			return offsets.Disabled(n)
		}
		return offsets.Detect(model.SkyOffsets(steps))
	}
	if scope == ScopeSequence {
		return []Block{{Start: 0, End: n, Pattern: detect(seq.Steps)}}
	}
	var blocks []Block
	start := 0
	for i := 1; i <= n; i++ {
		if i < n && seq.Steps[i].Wavelength == seq.Steps[start].Wavelength {
			continue
		}
		blocks = append(blocks, Block{Start: start, End: i, Pattern: detect(seq.Steps[start:i])})
		start = i
	}
	return blocks
}

func allAbove(values []float64, min float64) bool {
	for _, v := range values {
		if v <= min {
			return false
		}
	}
	return true
}
