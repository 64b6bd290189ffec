package events

import (
	"time"

	"github.com/kilianp07/skyplan/core/model"
	"github.com/kilianp07/skyplan/core/plan"
)

// Event is implemented by every event published on the bus.
type Event interface {
	Kind() string
}

// SegmentedEvent is published once per segmented observation.
type SegmentedEvent struct {
	ObservationID string
	Instrument    model.Instrument
	Mode          string
	Steps         int
	Atoms         int
	Duration      time.Duration
	Err           error
	Time          time.Time
}

func (SegmentedEvent) Kind() string { return "segmented" }

// VisitEvent is published for every placement attempt.
type VisitEvent struct {
	Site     model.Site
	Night    int
	Visit    plan.Visit
	Accepted bool
	Err      error
	Time     time.Time
}

func (VisitEvent) Kind() string { return "visit" }

// PlanEvent is published when a site plan is marked full.
type PlanEvent struct {
	Night    int
	Snapshot plan.Snapshot
	Time     time.Time
}

func (PlanEvent) Kind() string { return "plan" }
