package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/skyplan/core/metrics"
	"github.com/kilianp07/skyplan/infra/logger"
)

// InfluxConfig holds the InfluxDB connection settings.
type InfluxConfig struct {
	URL     string        `json:"url"`
	Token   string        `json:"token"`
	Org     string        `json:"org"`
	Bucket  string        `json:"bucket"`
	Timeout time.Duration `json:"timeout"`
}

// InfluxSink writes scheduling events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	timeout  time.Duration
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		timeout:  cfg.Timeout,
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), sink.timeout)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSegmentation writes one segmentation point.
func (s *InfluxSink) RecordSegmentation(ev coremetrics.SegmentationEvent) error {
	p := write.NewPointWithMeasurement("segmentation").
		AddTag("observation_id", ev.ObservationID).
		AddTag("instrument", ev.Instrument).
		AddTag("mode", ev.Mode).
		AddField("steps", ev.Steps).
		AddField("atoms", ev.Atoms).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000))
	if ev.Err != "" {
		p.AddField("error", ev.Err)
	}
	return s.write(p.SetTime(ev.Time))
}

// RecordVisit writes one placement attempt.
func (s *InfluxSink) RecordVisit(ev coremetrics.VisitEvent) error {
	p := write.NewPointWithMeasurement("visit").
		AddTag("site", ev.Site).
		AddTag("observation_id", ev.ObservationID).
		AddTag("instrument", ev.Instrument).
		AddField("start_slot", ev.StartSlot).
		AddField("slots", ev.Slots).
		AddField("score", round3(ev.Score)).
		AddField("accepted", ev.Accepted)
	if ev.Reason != "" {
		p.AddField("reason", ev.Reason)
	}
	return s.write(p.SetTime(ev.Time))
}

// RecordPlan writes the summary of a finished plan.
func (s *InfluxSink) RecordPlan(ev coremetrics.PlanEvent) error {
	p := write.NewPointWithMeasurement("plan").
		AddTag("site", ev.Site).
		AddField("night", ev.Night).
		AddField("visits", ev.Visits).
		AddField("total_slots", ev.TotalSlots).
		AddField("slots_left", ev.SlotsLeft).
		AddField("score", round3(ev.Score)).
		AddField("full", ev.Full).
		SetTime(ev.Time)
	return s.write(p)
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
