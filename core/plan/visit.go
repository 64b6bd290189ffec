package plan

import (
	"time"

	"github.com/kilianp07/skyplan/core/model"
)

// Observation is what the allocator needs to know about a placed
// observation.
type Observation interface {
	ObservationID() string
	InstrumentTag() model.Instrument
}

// Visit places the atom range [AtomStart, AtomEnd] of one observation into
// the slot range [StartSlot, StartSlot+Slots) of a plan.
type Visit struct {
	Start         time.Time        `json:"start_time"`
	ObservationID string           `json:"obs_id"`
	AtomStart     int              `json:"atom_start_idx"`
	AtomEnd       int              `json:"atom_end_idx"`
	StartSlot     int              `json:"start_time_slot"`
	Slots         int              `json:"time_slots"`
	Score         float64          `json:"score"`
	Instrument    model.Instrument `json:"instrument"`
}

// EndSlot returns the first slot after the visit.
func (v Visit) EndSlot() int { return v.StartSlot + v.Slots }

// Overlaps reports whether the slot ranges of v and o intersect.
func (v Visit) Overlaps(o Visit) bool {
	return v.StartSlot < o.EndSlot() && o.StartSlot < v.EndSlot()
}

// TimeToSlots converts d into a number of slots of length slotLength,
// rounding up.
func TimeToSlots(slotLength, d time.Duration) int {
	if slotLength <= 0 || d <= 0 {
		return 0
	}
	n := d / slotLength
	if d%slotLength != 0 {
		n++
	}
	return int(n)
}
