package monitoring

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremon "github.com/kilianp07/skyplan/core/monitoring"
)

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(Config{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestSentryMonitorCapture(t *testing.T) {
	var (
		mu   sync.Mutex
		sent []*sentry.Event
	)
	m, err := NewSentryMonitor(Config{DSN: "https://public@sentry.example.com/1", Environment: "test"}, func(o *sentry.ClientOptions) {
		o.BeforeSend = func(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			sent = append(sent, ev)
			mu.Unlock()
			return nil
		}
	})
	require.NoError(t, err)

	m.CaptureException(nil, nil)
	m.CaptureException(errors.New("plain"), nil)
	m.CaptureException(errors.New("segment failed"), map[string]string{"obs": "GS-2018B-Q-1-1", "stage": "segment"})
	m.Flush(time.Second)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, sent, 2)
	assert.Equal(t, "test", sent[1].Environment)
	assert.Equal(t, "GS-2018B-Q-1-1", sent[1].Tags["obs"])
	assert.Equal(t, "segment", sent[1].Tags["stage"])
}

func TestSentryMonitorRecoverRepanics(t *testing.T) {
	m, err := NewSentryMonitor(Config{DSN: "https://public@sentry.example.com/1"}, func(o *sentry.ClientOptions) {
		o.BeforeSend = func(*sentry.Event, *sentry.EventHint) *sentry.Event { return nil }
	})
	require.NoError(t, err)
	assert.Panics(t, func() {
		defer m.Recover()
		panic("boom")
	})
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{TracesSampleRate: 0.2}.Validate())
	assert.Error(t, Config{TracesSampleRate: 2}.Validate())
}
