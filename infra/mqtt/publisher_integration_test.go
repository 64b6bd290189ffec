package mqtt_test

import (
	"context"
	"encoding/json"
	"os/exec"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/skyplan/core/events"
	"github.com/kilianp07/skyplan/core/model"
	"github.com/kilianp07/skyplan/core/plan"
	"github.com/kilianp07/skyplan/infra/logger"
	"github.com/kilianp07/skyplan/infra/mqtt"
	"github.com/kilianp07/skyplan/internal/eventbus"
	"github.com/kilianp07/skyplan/internal/testutil"
)

func TestPlanPublisherMosquitto(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	broker, cleanup, err := testutil.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto: %v", err)
	}
	defer cleanup()

	received := make(chan []byte, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("observer"))
	require.NoError(t, waitToken(sub.Connect()))
	defer sub.Disconnect(100)
	require.NoError(t, waitToken(sub.Subscribe("skyplan/plans/#", 1, func(_ paho.Client, m paho.Message) {
		received <- m.Payload()
	})))

	pub, err := mqtt.NewPlanPublisher(mqtt.Config{Enabled: true, Broker: broker, QoS: 1}, logger.NopLogger{})
	require.NoError(t, err)
	defer pub.Disconnect()

	bus := eventbus.NewTyped[events.Event]()
	wg := pub.Start(ctx, "run-1", bus)
	p := plan.New(model.GeminiSouth, time.Now(), time.Now().Add(time.Hour), 6*time.Minute, 10)
	bus.Publish(events.PlanEvent{Night: 2, Snapshot: p.Snapshot(), Time: time.Now()})

	select {
	case payload := <-received:
		var msg mqtt.PlanMessage
		require.NoError(t, json.Unmarshal(payload, &msg))
		assert.Equal(t, "run-1", msg.RunID)
		assert.Equal(t, 2, msg.Night)
		assert.Equal(t, model.GeminiSouth, msg.Plan.Site)
		assert.Equal(t, 10, msg.Plan.SlotsLeft)
	case <-ctx.Done():
		t.Fatal("plan not received")
	}
	bus.Close()
	wg.Wait()
}

func waitToken(tok paho.Token) error {
	tok.Wait()
	return tok.Error()
}
