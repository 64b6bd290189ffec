package metrics

import "github.com/kilianp07/skyplan/core/factory"

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// MultiSink fans events out to several sinks. It lives here so that
// NewMetricsSink can build it without importing the infra sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSegmentation forwards to all sinks, returning the first error.
func (m *MultiSink) RecordSegmentation(ev SegmentationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSegmentation(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordVisit forwards to the sinks implementing VisitRecorder.
func (m *MultiSink) RecordVisit(ev VisitEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(VisitRecorder); ok {
			if err := rec.RecordVisit(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPlan forwards to the sinks implementing PlanRecorder.
func (m *MultiSink) RecordPlan(ev PlanEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PlanRecorder); ok {
			if err := rec.RecordPlan(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// NewMetricsSink creates a MetricsSink from the provided configuration.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]MetricsSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}
