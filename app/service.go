// Package app wires the segmentation and planning pipeline to its sinks.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/skyplan/config"
	"github.com/kilianp07/skyplan/core/canonical"
	"github.com/kilianp07/skyplan/core/events"
	coremetrics "github.com/kilianp07/skyplan/core/metrics"
	"github.com/kilianp07/skyplan/core/model"
	coremon "github.com/kilianp07/skyplan/core/monitoring"
	"github.com/kilianp07/skyplan/core/plan"
	"github.com/kilianp07/skyplan/core/scheduler"
	"github.com/kilianp07/skyplan/infra/logger"
	"github.com/kilianp07/skyplan/infra/metrics"
	"github.com/kilianp07/skyplan/infra/monitoring"
	"github.com/kilianp07/skyplan/infra/mqtt"
	"github.com/kilianp07/skyplan/infra/store"
	"github.com/kilianp07/skyplan/internal/eventbus"
)

// busBuffer is the per-subscriber buffer of a run's event bus. A run
// publishes one event per observation and placement.
const busBuffer = 1024

// Service runs segmentation and planning with the configured sinks.
type Service struct {
	cfg       *config.Config
	sink      coremetrics.MetricsSink
	store     *store.SQLiteStore
	publisher *mqtt.PlanPublisher
	monitor   coremon.Monitor
	log       logger.Logger
}

// Outcome is the result of one planning run.
type Outcome struct {
	RunID   string
	Night   int
	Results []scheduler.Result
	Plans   *plan.Plans
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service", logger.WithLevel(cfg.Logging.Level))

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	svc := &Service{cfg: cfg, sink: sink, monitor: mon, log: logg}

	if cfg.Store.Enabled {
		st, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		svc.store = st
	}
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPlanPublisher(cfg.MQTT, logg.With(map[string]any{"sink": "mqtt"}))
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// SetMonitor replaces the error monitor.
func (s *Service) SetMonitor(m coremon.Monitor) {
	if m != nil {
		s.monitor = m
	}
}

// Monitor returns the error monitor.
func (s *Service) Monitor() coremon.Monitor { return s.monitor }

// report sends the segmentation failures of results to the monitor.
func (s *Service) report(runID string, results []scheduler.Result) {
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		tags := map[string]string{"stage": "segment", "obs": r.Observation.ID, "site": r.Observation.Site.String()}
		if runID != "" {
			tags["run"] = runID
		}
		s.monitor.CaptureException(r.Err, tags)
	}
}

// ServeMetrics serves the Prometheus endpoint until ctx is canceled when a
// port is configured.
func (s *Service) ServeMetrics(ctx context.Context) {
	if s.cfg.Metrics.PrometheusPort == "" {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort, s.log); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// run holds the event bus of one pipeline invocation and the consumers
// draining it.
type run struct {
	bus  *eventbus.TypedBus[events.Event]
	wait []*sync.WaitGroup
}

func (s *Service) startRun(ctx context.Context, runID string) *run {
	r := &run{bus: eventbus.NewTypedWithBuffer[events.Event](busBuffer)}
	r.wait = append(r.wait, metrics.StartEventCollector(ctx, r.bus, s.sink))
	if s.publisher != nil && runID != "" {
		r.wait = append(r.wait, s.publisher.Start(ctx, runID, r.bus))
	}
	return r
}

// finish closes the bus and waits for every consumer to drain it.
func (s *Service) finish(r *run) {
	r.bus.Close()
	for _, wg := range r.wait {
		wg.Wait()
	}
	if n := r.bus.Dropped(); n > 0 {
		s.log.Warnf("%d events dropped", n)
	}
}

// Segment atomizes raws without planning.
func (s *Service) Segment(ctx context.Context, raws []canonical.RawObservation) []scheduler.Result {
	r := s.startRun(ctx, "")
	defer s.finish(r)
	seg := scheduler.NewSegmenter(s.cfg.Segmentation, s.cfg.Planning.Workers, r.bus, s.log.With(map[string]any{"stage": "segment"}))
	results := seg.SegmentAll(ctx, raws)
	s.report("", results)
	return results
}

// Plan segments raws, fills the plans of night from the night events and
// persists the run when a store is configured.
func (s *Service) Plan(ctx context.Context, raws []canonical.RawObservation, nights []plan.NightEvents, night int) (*Outcome, error) {
	plans, err := plan.NewPlans(nights, night, s.cfg.Planning.PlanOptions()...)
	if err != nil {
		return nil, err
	}
	out := &Outcome{RunID: store.NewRunID(), Night: night, Plans: plans}
	log := s.log.With(map[string]any{"run": out.RunID, "night": night})

	r := s.startRun(ctx, out.RunID)
	seg := scheduler.NewSegmenter(s.cfg.Segmentation, s.cfg.Planning.Workers, r.bus, log.With(map[string]any{"stage": "segment"}))
	out.Results = seg.SegmentAll(ctx, raws)
	s.report(out.RunID, out.Results)
	cands := scheduler.Candidates(out.Results)

	opt := scheduler.NewGreedyOptimizer(r.bus, log.With(map[string]any{"stage": "plan"}))
	err = opt.Schedule(ctx, plans, cands)
	if err == nil {
		for _, p := range plans.All() {
			p.SetNightStats(scheduler.Summarize(p, cands, s.cfg.Planning.Conditions))
		}
	}
	s.finish(r)
	if err != nil {
		s.monitor.CaptureException(err, map[string]string{"stage": "plan", "run": out.RunID})
		return out, fmt.Errorf("schedule: %w", err)
	}

	var invalid []error
	for _, p := range plans.All() {
		if verr := p.Validate(); verr != nil {
			invalid = append(invalid, verr)
		}
	}
	if len(invalid) > 0 {
		log.Warnf("plans violate capacity: %v", errors.Join(invalid...))
	}

	if s.store != nil {
		if _, err := s.store.SaveRun(ctx, s.record(out)); err != nil {
			s.monitor.CaptureException(err, map[string]string{"stage": "store", "run": out.RunID})
			return out, fmt.Errorf("save run: %w", err)
		}
	}
	log.Infof("run finished: %d observations, %d candidates", len(raws), len(cands))
	return out, nil
}

func (s *Service) record(out *Outcome) store.Run {
	rec := store.Run{ID: out.RunID, Night: out.Night, CreatedAt: time.Now().UTC(), Atoms: make(map[string][]model.Atom)}
	for _, p := range out.Plans.All() {
		rec.Plans = append(rec.Plans, p.Snapshot())
	}
	for _, res := range out.Results {
		if res.Err == nil {
			rec.Atoms[res.Observation.ID] = res.Observation.Atoms
		}
	}
	return rec
}

// Config returns the configuration the service was built from.
func (s *Service) Config() *config.Config { return s.cfg }

// Store returns the run store, nil when persistence is disabled.
func (s *Service) Store() *store.SQLiteStore { return s.store }

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.monitor.Flush(2 * time.Second)
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
