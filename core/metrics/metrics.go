package metrics

import "time"

// SegmentationEvent describes the segmentation of one observation.
type SegmentationEvent struct {
	ObservationID string
	Instrument    string
	Mode          string
	Steps         int
	Atoms         int
	Duration      time.Duration
	// Err is empty when segmentation succeeded.
	Err  string
	Time time.Time
}

// MetricsSink records segmentation events.
type MetricsSink interface {
	RecordSegmentation(ev SegmentationEvent) error
}

// VisitEvent describes one placement attempt.
type VisitEvent struct {
	Site          string
	ObservationID string
	Instrument    string
	StartSlot     int
	Slots         int
	Score         float64
	Accepted      bool
	Reason        string
	Time          time.Time
}

// VisitRecorder records placement attempts.
type VisitRecorder interface {
	RecordVisit(ev VisitEvent) error
}

// PlanEvent is a snapshot of a finished site plan.
type PlanEvent struct {
	Site       string
	Night      int
	Visits     int
	TotalSlots int
	SlotsLeft  int
	Score      float64
	Full       bool
	Time       time.Time
}

// PlanRecorder records finished plans.
type PlanRecorder interface {
	RecordPlan(ev PlanEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordSegmentation(SegmentationEvent) error { return nil }
func (NopSink) RecordVisit(VisitEvent) error               { return nil }
func (NopSink) RecordPlan(PlanEvent) error                 { return nil }
