package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/skyplan/core/metrics"
)

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	srv := httptest.NewServer(NewPromHandler(reg))
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPromSinkRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordSegmentation(coremetrics.SegmentationEvent{
		ObservationID: "GS-1", Instrument: "GMOS-S", Mode: "longslit", Atoms: 3, Duration: time.Millisecond,
	}))
	require.NoError(t, sink.RecordSegmentation(coremetrics.SegmentationEvent{Instrument: "GMOS-S", Mode: "unknown", Err: "boom"}))
	require.NoError(t, sink.RecordVisit(coremetrics.VisitEvent{Site: "GS", Accepted: true}))
	require.NoError(t, sink.RecordPlan(coremetrics.PlanEvent{Site: "GS", Visits: 2, SlotsLeft: 17}))

	out := scrape(t, reg)
	assert.Contains(t, out, `skyplan_segmentations_total{instrument="GMOS-S",mode="longslit",result="ok"} 1`)
	assert.Contains(t, out, `skyplan_segmentations_total{instrument="GMOS-S",mode="unknown",result="error"} 1`)
	assert.Contains(t, out, `skyplan_atoms_total{instrument="GMOS-S"} 3`)
	assert.Contains(t, out, `skyplan_visits_total{accepted="true",site="GS"} 1`)
	assert.Contains(t, out, `skyplan_plan_slots_left{site="GS"} 17`)
	assert.Contains(t, out, `skyplan_plan_visits{site="GS"} 2`)
}

func TestPromSinkReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	b, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, a.RecordVisit(coremetrics.VisitEvent{Site: "GN"}))
	require.NoError(t, b.RecordVisit(coremetrics.VisitEvent{Site: "GN"}))
	assert.Contains(t, scrape(t, reg), `skyplan_visits_total{accepted="false",site="GN"} 2`)
}
