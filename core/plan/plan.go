package plan

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/skyplan/core/model"
)

// Option customizes a Plan.
type Option func(*Plan)

// PermissiveCapacity makes Add accept every placement and decrement the
// remaining capacity unconditionally. Validate still reports the result.
func PermissiveCapacity() Option {
	return func(p *Plan) { p.permissive = true }
}

// Plan is the night plan of one site. It is safe for concurrent use; each
// Add holds the plan lock for its whole check and commit.
type Plan struct {
	Site       model.Site
	Start      time.Time
	End        time.Time
	SlotLength time.Duration

	mu         sync.Mutex
	total      int
	left       int
	permissive bool
	visits     []Visit
	full       bool
	stats      *NightStats
}

// New returns an empty plan with slots time slots of capacity.
func New(site model.Site, start, end time.Time, slotLength time.Duration, slots int, opts ...Option) *Plan {
	p := &Plan{Site: site, Start: start, End: end, SlotLength: slotLength, total: slots, left: slots}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Add appends a visit of obs covering atoms [atomStart, atomEnd] and
// consumes slots from the remaining capacity. Unless the plan is
// permissive, a placement that does not fit the remaining capacity or the
// night is rejected with a CapacityExceededError and the plan is left as
// it was.
func (p *Plan) Add(obs Observation, start time.Time, startSlot, slots int, score float64, atomStart, atomEnd int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.permissive {
		if slots <= 0 {
			return fmt.Errorf("plan %s: %s: invalid slot count %d", p.Site, obs.ObservationID(), slots)
		}
		if slots > p.left {
			return &model.CapacityExceededError{Site: p.Site, Requested: slots, Left: p.left, Reason: obs.ObservationID()}
		}
		if startSlot < 0 || startSlot+slots > p.total {
			return &model.CapacityExceededError{
				Site: p.Site, Requested: slots, Left: p.left,
				Reason: fmt.Sprintf("%s: slots [%d,%d) outside night of %d", obs.ObservationID(), startSlot, startSlot+slots, p.total),
			}
		}
	}

	p.visits = append(p.visits, Visit{
		Start:         start,
		ObservationID: obs.ObservationID(),
		AtomStart:     atomStart,
		AtomEnd:       atomEnd,
		StartSlot:     startSlot,
		Slots:         slots,
		Score:         score,
		Instrument:    obs.InstrumentTag(),
	})
	p.left -= slots
	return nil
}

// TimeLeft returns the remaining capacity in slots.
func (p *Plan) TimeLeft() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.left
}

// TotalSlots returns the capacity of the empty plan.
func (p *Plan) TotalSlots() int { return p.total }

// Contains reports whether the plan visits the observation id.
func (p *Plan) Contains(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, v := range p.visits {
		if v.ObservationID == id {
			return true
		}
	}
	return false
}

// Visits returns a copy of the visits in placement order.
func (p *Plan) Visits() []Visit {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Visit(nil), p.visits...)
}

// SetFull marks the plan as complete.
func (p *Plan) SetFull(full bool) {
	p.mu.Lock()
	p.full = full
	p.mu.Unlock()
}

// Full reports whether the plan was marked complete.
func (p *Plan) Full() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.full
}

// SetNightStats attaches the post-hoc summary.
func (p *Plan) SetNightStats(s NightStats) {
	p.mu.Lock()
	p.stats = &s
	p.mu.Unlock()
}

// NightStats returns the summary, if one was attached.
func (p *Plan) NightStats() (NightStats, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stats == nil {
		return NightStats{}, false
	}
	return *p.stats, true
}

// Validate checks the capacity, bounds and non-overlap invariants.
func (p *Plan) Validate() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.left < 0 {
		errs = append(errs, fmt.Errorf("plan %s: negative capacity %d", p.Site, p.left))
	}
	for i, v := range p.visits {
		if v.StartSlot < 0 || v.EndSlot() > p.total {
			errs = append(errs, fmt.Errorf("plan %s: visit %d of %s outside night", p.Site, i, v.ObservationID))
		}
		for j := i + 1; j < len(p.visits); j++ {
			if v.Overlaps(p.visits[j]) {
				errs = append(errs, fmt.Errorf("plan %s: visits %d and %d overlap", p.Site, i, j))
			}
		}
	}
	return errors.Join(errs...)
}

// Snapshot is a serializable copy of a plan.
type Snapshot struct {
	Site       model.Site  `json:"site"`
	Start      time.Time   `json:"start"`
	End        time.Time   `json:"end"`
	SlotLength string      `json:"time_slot_length"`
	TotalSlots int         `json:"total_slots"`
	SlotsLeft  int         `json:"time_slots_left"`
	Full       bool        `json:"is_full"`
	Visits     []Visit     `json:"visits"`
	NightStats *NightStats `json:"night_stats,omitempty"`
}

// Snapshot returns a consistent copy of the plan state.
func (p *Plan) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Snapshot{
		Site:       p.Site,
		Start:      p.Start,
		End:        p.End,
		SlotLength: p.SlotLength.String(),
		TotalSlots: p.total,
		SlotsLeft:  p.left,
		Full:       p.full,
		Visits:     append([]Visit{}, p.visits...),
	}
	if p.stats != nil {
		st := *p.stats
		s.NightStats = &st
	}
	return s
}
