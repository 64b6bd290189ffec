package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/skyplan/config"
	"github.com/kilianp07/skyplan/core/canonical"
	"github.com/kilianp07/skyplan/core/factory"
	"github.com/kilianp07/skyplan/core/model"
	"github.com/kilianp07/skyplan/core/plan"
)

func raw(id string, site model.Site, n int, score float64) canonical.RawObservation {
	inst := "GMOS-S"
	if site == model.GeminiNorth {
		inst = "GMOS-N"
	}
	obs := canonical.RawObservation{ID: id, Site: site, Band: 1, Score: score}
	for i := 0; i < n; i++ {
		obs.Sequence = append(obs.Sequence, canonical.RawStep{
			"instrument:instrument":          inst,
			"instrument:fpu":                 "FPU_NONE",
			"instrument:disperser":           "MIRROR",
			"instrument:observingWavelength": "0.63",
			"observe:exposureTime":           "300",
			"observe:class":                  "science",
			"observe:observeType":            "OBJECT",
			"observe:dataLabel":              fmt.Sprintf("%s-%03d", id, i+1),
			"totalTime":                      float64(330000),
		})
	}
	return obs
}

func nights() []plan.NightEvents {
	start := time.Date(2018, 9, 1, 23, 0, 0, 0, time.UTC)
	night := []plan.Night{{Start: start, End: start.Add(time.Hour), Slots: 10}}
	return []plan.NightEvents{
		{Site: model.GeminiNorth, SlotMinutes: 6, Nights: night},
		{Site: model.GeminiSouth, SlotMinutes: 6, Nights: night},
	}
}

type captureMonitor struct {
	mu   sync.Mutex
	tags []map[string]string
}

func (m *captureMonitor) CaptureException(_ error, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags = append(m.tags, tags)
}
func (m *captureMonitor) Recover()            {}
func (m *captureMonitor) Flush(time.Duration) {}

func newService(t *testing.T) *Service {
	t.Helper()
	cfg := config.Default()
	cfg.Planning.Workers = 2
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	cfg.Store.Enabled = true
	cfg.Store.Path = filepath.Join(t.TempDir(), "runs.db")
	svc, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestServicePlan(t *testing.T) {
	svc := newService(t)
	mon := &captureMonitor{}
	svc.SetMonitor(mon)
	raws := []canonical.RawObservation{
		raw("GS-A", model.GeminiSouth, 3, 2),
		raw("GN-A", model.GeminiNorth, 3, 1),
		{ID: "GS-BAD", Site: model.GeminiSouth},
	}
	out, err := svc.Plan(context.Background(), raws, nights(), 0)
	require.NoError(t, err)
	require.Len(t, out.Results, 3)
	assert.Error(t, out.Results[2].Err)
	assert.True(t, out.Plans.AllDone())

	for _, p := range out.Plans.All() {
		require.Len(t, p.Visits(), 1, p.Site.String())
		assert.Equal(t, 3, p.Visits()[0].Slots)
		stats, ok := p.NightStats()
		require.True(t, ok)
		assert.Equal(t, 42*time.Minute, stats.TimeLoss)
	}

	run, err := svc.Store().LoadRun(context.Background(), out.RunID)
	require.NoError(t, err)
	assert.Equal(t, 0, run.Night)
	require.Len(t, run.Plans, 2)
	assert.Equal(t, model.GeminiNorth, run.Plans[0].Site)
	assert.Len(t, run.Atoms, 2)
	assert.Len(t, run.Atoms["GS-A"], 3)

	require.Len(t, mon.tags, 1)
	assert.Equal(t, "GS-BAD", mon.tags[0]["obs"])
	assert.Equal(t, "segment", mon.tags[0]["stage"])
	assert.Equal(t, out.RunID, mon.tags[0]["run"])
}

func TestServicePlanBadNight(t *testing.T) {
	svc := newService(t)
	_, err := svc.Plan(context.Background(), nil, nights(), 4)
	assert.Error(t, err)
}

func TestServiceSegment(t *testing.T) {
	svc := newService(t)
	res := svc.Segment(context.Background(), []canonical.RawObservation{raw("GS-A", model.GeminiSouth, 5, 1)})
	require.Len(t, res, 1)
	require.NoError(t, res[0].Err)
	assert.Len(t, res[0].Observation.Atoms, 5)
}

func TestNewUnknownSink(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "statsd"}}
	_, err := New(cfg)
	assert.Error(t, err)
}
