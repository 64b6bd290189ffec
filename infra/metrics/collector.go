package metrics

import (
	"context"
	"sync"

	"github.com/kilianp07/skyplan/core/events"
	coremetrics "github.com/kilianp07/skyplan/core/metrics"
	"github.com/kilianp07/skyplan/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// events. The returned WaitGroup is done once the collector stopped, which
// happens when ctx is canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Event], sink coremetrics.MetricsSink) *sync.WaitGroup {
	var wg sync.WaitGroup
	if bus == nil || sink == nil {
		return &wg
	}
	sub := bus.Subscribe()
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev)
			}
		}
	}()
	return &wg
}

func record(sink coremetrics.MetricsSink, ev events.Event) {
	switch e := ev.(type) {
	case events.SegmentedEvent:
		out := coremetrics.SegmentationEvent{
			ObservationID: e.ObservationID,
			Instrument:    e.Instrument.String(),
			Mode:          e.Mode,
			Steps:         e.Steps,
			Atoms:         e.Atoms,
			Duration:      e.Duration,
			Time:          e.Time,
		}
		if e.Err != nil {
			out.Err = e.Err.Error()
		}
		_ = sink.RecordSegmentation(out)
	case events.VisitEvent:
		if r, ok := sink.(coremetrics.VisitRecorder); ok {
			out := coremetrics.VisitEvent{
				Site:          e.Site.String(),
				ObservationID: e.Visit.ObservationID,
				Instrument:    e.Visit.Instrument.String(),
				StartSlot:     e.Visit.StartSlot,
				Slots:         e.Visit.Slots,
				Score:         e.Visit.Score,
				Accepted:      e.Accepted,
				Time:          e.Time,
			}
			if e.Err != nil {
				out.Reason = e.Err.Error()
			}
			_ = r.RecordVisit(out)
		}
	case events.PlanEvent:
		if r, ok := sink.(coremetrics.PlanRecorder); ok {
			s := e.Snapshot
			score := 0.0
			for _, v := range s.Visits {
				score += v.Score
			}
			_ = r.RecordPlan(coremetrics.PlanEvent{
				Site:       s.Site.String(),
				Night:      e.Night,
				Visits:     len(s.Visits),
				TotalSlots: s.TotalSlots,
				SlotsLeft:  s.SlotsLeft,
				Score:      score,
				Full:       s.Full,
				Time:       e.Time,
			})
		}
	}
}
