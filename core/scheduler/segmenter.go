package scheduler

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/skyplan/core/atoms"
	"github.com/kilianp07/skyplan/core/canonical"
	"github.com/kilianp07/skyplan/core/events"
	"github.com/kilianp07/skyplan/core/logger"
	"github.com/kilianp07/skyplan/core/model"
	"github.com/kilianp07/skyplan/internal/eventbus"
)

// Result is the outcome of segmenting one raw observation.
type Result struct {
	Observation  model.Observation
	Sequence     model.Sequence
	Segmentation atoms.Segmentation
	Score        float64
	Err          error
}

// Segmenter atomizes raw observations concurrently.
type Segmenter struct {
	cfg     atoms.Config
	workers int
	bus     *eventbus.TypedBus[events.Event]
	log     logger.Logger
}

// NewSegmenter returns a Segmenter running at most workers tasks at once.
// bus may be nil.
func NewSegmenter(cfg atoms.Config, workers int, bus *eventbus.TypedBus[events.Event], log logger.Logger) *Segmenter {
	if workers < 1 {
		workers = 1
	}
	return &Segmenter{cfg: cfg, workers: workers, bus: bus, log: log}
}

// SegmentAll segments every observation and returns one Result per input,
// in input order. A failing observation only records its own error.
func (s *Segmenter) SegmentAll(ctx context.Context, raws []canonical.RawObservation) []Result {
	results := make([]Result, len(raws))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, raw := range raws {
		i, raw := i, raw
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Observation: model.Observation{ID: raw.ID, Site: raw.Site}, Err: err}
				return nil
			}
			results[i] = s.segment(raw)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Segmenter) segment(raw canonical.RawObservation) Result {
	start := time.Now()
	res := Result{
		Observation: model.Observation{ID: raw.ID, Site: raw.Site, Band: raw.Band, ToO: raw.ToO},
		Score:       raw.Score,
	}
	seq, err := canonical.Build(raw)
	if err == nil {
		res.Sequence = seq
		res.Observation.Instrument = seq.Instrument
		res.Segmentation, err = atoms.Segment(seq, s.cfg)
		res.Observation.Atoms = res.Segmentation.Atoms
	}
	res.Err = err
	elapsed := time.Since(start)

	if err != nil {
		s.log.Warnf("segment %s: %v", raw.ID, err)
	} else {
		s.log.Debugw("segmented", map[string]any{
			"obs":   raw.ID,
			"mode":  string(res.Segmentation.Mode),
			"steps": len(seq.Steps),
			"atoms": len(res.Segmentation.Atoms),
		})
	}
	if s.bus != nil {
		s.bus.Publish(events.SegmentedEvent{
			ObservationID: raw.ID,
			Instrument:    res.Observation.Instrument,
			Mode:          string(res.Segmentation.Mode),
			Steps:         len(seq.Steps),
			Atoms:         len(res.Segmentation.Atoms),
			Duration:      elapsed,
			Err:           err,
			Time:          time.Now(),
		})
	}
	return res
}

// Candidates returns the successfully segmented observations as scheduling
// candidates.
func Candidates(results []Result) []Candidate {
	out := make([]Candidate, 0, len(results))
	for _, r := range results {
		if r.Err != nil || len(r.Observation.Atoms) == 0 {
			continue
		}
		out = append(out, Candidate{Observation: r.Observation, Score: r.Score})
	}
	return out
}
