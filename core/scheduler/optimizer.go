package scheduler

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/skyplan/core/events"
	"github.com/kilianp07/skyplan/core/logger"
	"github.com/kilianp07/skyplan/core/model"
	"github.com/kilianp07/skyplan/core/plan"
	"github.com/kilianp07/skyplan/internal/eventbus"
)

// Candidate is an atomized observation offered to the optimizer.
type Candidate struct {
	Observation model.Observation
	Score       float64
}

// GreedyOptimizer fills plans by descending candidate score. Each site is
// filled by its own goroutine, which is the only writer of that plan.
type GreedyOptimizer struct {
	bus *eventbus.TypedBus[events.Event]
	log logger.Logger
}

// NewGreedyOptimizer returns an optimizer publishing on bus, which may be nil.
func NewGreedyOptimizer(bus *eventbus.TypedBus[events.Event], log logger.Logger) *GreedyOptimizer {
	return &GreedyOptimizer{bus: bus, log: log}
}

// Schedule places candidates into plans and marks every plan full. It
// returns the context error if scheduling was interrupted.
func (o *GreedyOptimizer) Schedule(ctx context.Context, plans *plan.Plans, cands []Candidate) error {
	bySite := make(map[model.Site][]Candidate)
	for _, c := range cands {
		if _, ok := plans.For(c.Observation.Site); !ok {
			o.log.Warnf("observation %s: no plan for site %s", c.Observation.ID, c.Observation.Site)
			continue
		}
		bySite[c.Observation.Site] = append(bySite[c.Observation.Site], c)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, p := range plans.All() {
		p := p
		site := bySite[p.Site]
		g.Go(func() error { return o.fill(ctx, plans.Night, p, site) })
	}
	return g.Wait()
}

func (o *GreedyOptimizer) fill(ctx context.Context, night int, p *plan.Plan, cands []Candidate) error {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Observation.ID < cands[j].Observation.ID
	})

	cursor := 0
	for _, c := range cands {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.TimeLeft() <= 0 {
			break
		}
		start, end, slots, ok := longestFit(c.Observation, p.SlotLength, p.TimeLeft())
		if !ok {
			continue
		}
		v := plan.Visit{
			Start:         p.Start.Add(time.Duration(cursor) * p.SlotLength),
			ObservationID: c.Observation.ID,
			AtomStart:     start,
			AtomEnd:       end,
			StartSlot:     cursor,
			Slots:         slots,
			Score:         c.Score,
			Instrument:    c.Observation.Instrument,
		}
		err := p.Add(c.Observation, v.Start, v.StartSlot, v.Slots, v.Score, v.AtomStart, v.AtomEnd)
		o.publish(events.VisitEvent{Site: p.Site, Night: night, Visit: v, Accepted: err == nil, Err: err, Time: time.Now()})
		if err != nil {
			o.log.Warnf("plan %s: %v", p.Site, err)
			continue
		}
		o.log.Debugw("visit placed", map[string]any{
			"site":  p.Site.String(),
			"obs":   v.ObservationID,
			"atoms": []int{start, end},
			"slot":  cursor,
			"slots": slots,
		})
		cursor += slots
	}

	p.SetFull(true)
	o.publish(events.PlanEvent{Night: night, Snapshot: p.Snapshot(), Time: time.Now()})
	o.log.Infof("plan %s night %d: %d visits, %d slots left", p.Site, night, len(p.Visits()), p.TimeLeft())
	return nil
}

// longestFit finds the longest run of unobserved atoms starting at the
// first unobserved one whose execution fits in left slots.
func longestFit(obs model.Observation, slotLength time.Duration, left int) (start, end, slots int, ok bool) {
	start = obs.FirstUnobserved()
	if start < 0 {
		return 0, 0, 0, false
	}
	last := start
	for last+1 < len(obs.Atoms) && !obs.Atoms[last+1].Observed {
		last++
	}
	for end = last; end >= start; end-- {
		slots = plan.TimeToSlots(slotLength, obs.ExecTime(start, end))
		if slots > 0 && slots <= left {
			return start, end, slots, true
		}
	}
	return 0, 0, 0, false
}

func (o *GreedyOptimizer) publish(e events.Event) {
	if o.bus != nil {
		o.bus.Publish(e)
	}
}
