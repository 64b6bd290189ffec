package plan

import (
	"fmt"
	"time"

	"github.com/kilianp07/skyplan/core/model"
)

// Night is the timing of one night at a site.
type Night struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
	Slots int       `json:"slots" yaml:"slots"`
}

// NightEvents holds the precomputed night timing of one site.
type NightEvents struct {
	Site        model.Site `json:"site" yaml:"site"`
	SlotMinutes int        `json:"slot_minutes" yaml:"slot_minutes"`
	Nights      []Night    `json:"nights" yaml:"nights"`
}

// SlotLength returns the time slot length.
func (e NightEvents) SlotLength() time.Duration {
	return time.Duration(e.SlotMinutes) * time.Minute
}

// Plans is the set of site plans for one night.
type Plans struct {
	Night int
	plans map[model.Site]*Plan
}

// NewPlans creates one empty plan per site for night index night.
func NewPlans(events []NightEvents, night int, opts ...Option) (*Plans, error) {
	ps := &Plans{Night: night, plans: make(map[model.Site]*Plan, len(events))}
	for _, ne := range events {
		if ne.SlotMinutes <= 0 {
			return nil, fmt.Errorf("night events %s: slot_minutes must be positive", ne.Site)
		}
		if night < 0 || night >= len(ne.Nights) {
			return nil, fmt.Errorf("night events %s: night %d out of range [0,%d)", ne.Site, night, len(ne.Nights))
		}
		if _, dup := ps.plans[ne.Site]; dup {
			return nil, fmt.Errorf("night events %s: duplicate site", ne.Site)
		}
		n := ne.Nights[night]
		ps.plans[ne.Site] = New(ne.Site, n.Start, n.End, ne.SlotLength(), n.Slots, opts...)
	}
	return ps, nil
}

// For returns the plan of site.
func (ps *Plans) For(site model.Site) (*Plan, bool) {
	p, ok := ps.plans[site]
	return p, ok
}

// All returns the plans in site order.
func (ps *Plans) All() []*Plan {
	out := make([]*Plan, 0, len(ps.plans))
	for _, s := range model.Sites {
		if p, ok := ps.plans[s]; ok {
			out = append(out, p)
		}
	}
	return out
}

// AllDone reports whether every site plan is marked full.
func (ps *Plans) AllDone() bool {
	for _, p := range ps.plans {
		if !p.Full() {
			return false
		}
	}
	return true
}
