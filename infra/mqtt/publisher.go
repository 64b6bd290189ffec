package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kilianp07/skyplan/core/events"
	"github.com/kilianp07/skyplan/core/plan"
	"github.com/kilianp07/skyplan/infra/logger"
	"github.com/kilianp07/skyplan/internal/eventbus"
)

// PlanMessage is the payload published for a finished plan.
type PlanMessage struct {
	RunID       string        `json:"run_id"`
	Night       int           `json:"night"`
	Plan        plan.Snapshot `json:"plan"`
	PublishedAt time.Time     `json:"published_at"`
}

// PlanPublisher sends plan updates to <prefix>/plans/<site>.
type PlanPublisher struct {
	cli     pahoClient
	prefix  string
	qos     byte
	retain  bool
	retries int
	backoff time.Duration
	log     logger.Logger
}

// NewPlanPublisher connects to the broker.
func NewPlanPublisher(cfg Config, log logger.Logger) (*PlanPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	cli, err := connect(cfg, log)
	if err != nil {
		return nil, err
	}
	return &PlanPublisher{
		cli:     cli,
		prefix:  strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:     cfg.QoS,
		retain:  cfg.Retain,
		retries: cfg.MaxRetries,
		backoff: time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:     log,
	}, nil
}

// Topic returns the topic plans of site are published on.
func (p *PlanPublisher) Topic(site string) string {
	return fmt.Sprintf("%s/plans/%s", p.prefix, site)
}

// PublishPlan publishes one plan snapshot, retrying with exponential
// backoff.
func (p *PlanPublisher) PublishPlan(runID string, night int, snap plan.Snapshot) error {
	payload, err := json.Marshal(PlanMessage{RunID: runID, Night: night, Plan: snap, PublishedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	topic := p.Topic(snap.Site.String())
	var publishErr error
	for attempt := 0; attempt <= p.retries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		if publishErr = token.Error(); publishErr == nil {
			p.log.Infof("published plan %s night %d to %s", runID, night, topic)
			return nil
		}
		p.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.retries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// Start publishes every PlanEvent seen on bus until ctx is canceled or
// the bus is closed. The subscription is taken before Start returns.
func (p *PlanPublisher) Start(ctx context.Context, runID string, bus *eventbus.TypedBus[events.Event]) *sync.WaitGroup {
	sub := bus.Subscribe()
	var wg sync.WaitGroup
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
				if pe, isPlan := ev.(events.PlanEvent); isPlan {
					if err := p.PublishPlan(runID, pe.Night, pe.Snapshot); err != nil {
						p.log.Errorf("plan %s: %v", pe.Snapshot.Site, err)
					}
				}
			}
		}
	}()
	return &wg
}

// Disconnect gracefully closes the MQTT connection.
func (p *PlanPublisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
