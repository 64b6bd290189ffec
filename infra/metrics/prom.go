package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/skyplan/core/metrics"
)

// PromSink records scheduling activity in Prometheus metrics.
type PromSink struct {
	segmentations *prometheus.CounterVec
	atoms         *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	visits        *prometheus.CounterVec
	slotsLeft     *prometheus.GaugeVec
	planVisits    *prometheus.GaugeVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// register registers c, reusing an identical collector registered earlier.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		segmentations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skyplan_segmentations_total",
			Help: "Observations segmented, by instrument, mode and result",
		}, []string{"instrument", "mode", "result"}),
		atoms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skyplan_atoms_total",
			Help: "Atoms produced by segmentation",
		}, []string{"instrument"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skyplan_segmentation_duration_seconds",
			Help:    "Time spent segmenting one observation",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 8),
		}, []string{"instrument"}),
		visits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skyplan_visits_total",
			Help: "Placement attempts, by site and outcome",
		}, []string{"site", "accepted"}),
		slotsLeft: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "skyplan_plan_slots_left",
			Help: "Remaining time slots of the last finished plan",
		}, []string{"site"}),
		planVisits: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "skyplan_plan_visits",
			Help: "Visits of the last finished plan",
		}, []string{"site"}),
	}
	var err error
	if s.segmentations, err = register(reg, s.segmentations); err != nil {
		return nil, err
	}
	if s.atoms, err = register(reg, s.atoms); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.visits, err = register(reg, s.visits); err != nil {
		return nil, err
	}
	if s.slotsLeft, err = register(reg, s.slotsLeft); err != nil {
		return nil, err
	}
	if s.planVisits, err = register(reg, s.planVisits); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordSegmentation counts the observation and its atoms.
func (s *PromSink) RecordSegmentation(ev coremetrics.SegmentationEvent) error {
	result := "ok"
	if ev.Err != "" {
		result = "error"
	}
	s.segmentations.WithLabelValues(ev.Instrument, ev.Mode, result).Inc()
	s.atoms.WithLabelValues(ev.Instrument).Add(float64(ev.Atoms))
	s.duration.WithLabelValues(ev.Instrument).Observe(ev.Duration.Seconds())
	return nil
}

// RecordVisit counts a placement attempt.
func (s *PromSink) RecordVisit(ev coremetrics.VisitEvent) error {
	s.visits.WithLabelValues(ev.Site, strconv.FormatBool(ev.Accepted)).Inc()
	return nil
}

// RecordPlan sets the plan gauges of the site.
func (s *PromSink) RecordPlan(ev coremetrics.PlanEvent) error {
	s.slotsLeft.WithLabelValues(ev.Site).Set(float64(ev.SlotsLeft))
	s.planVisits.WithLabelValues(ev.Site).Set(float64(ev.Visits))
	return nil
}
