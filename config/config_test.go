package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/skyplan/core/atoms"
)

func write(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := write(t, "config.yaml", `segmentation:
  offset_scope: sequence
  exptime_groups: true
planning:
  workers: 3
  permissive_capacity: true
  conditions:
    cc: "0.5"
    iq: "0.7"
    sb: "0.8"
    wv: Any
metrics:
  prometheus_port: ":2112"
  sinks:
    - type: "nop"
store:
  enabled: true
  path: /tmp/runs.db
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  client_id: "cli"
  topic_prefix: "gemini"
  qos: 1
logging:
  level: debug
odb:
  url: http://odb.example:8442/programexport
  cache_dir: /tmp/odb
  timeout: 10s
  auth:
    client_id: skyplan
    token_url: http://auth.example/token
sentry:
  environment: staging
  traces_sample_rate: 0.1
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"offset_scope", cfg.Segmentation.OffsetScope, atoms.ScopeSequence},
		{"exptime_groups", cfg.Segmentation.ExptimeGroups, true},
		{"workers", cfg.Planning.Workers, 3},
		{"permissive", cfg.Planning.PermissiveCapacity, true},
		{"conditions.iq", cfg.Planning.Conditions.ImageQuality, "0.7"},
		{"conditions.wv", cfg.Planning.Conditions.WaterVapor, "Any"},
		{"prometheus_port", cfg.Metrics.PrometheusPort, ":2112"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"store.enabled", cfg.Store.Enabled, true},
		{"store.path", cfg.Store.Path, "/tmp/runs.db"},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"topic_prefix", cfg.MQTT.TopicPrefix, "gemini"},
		{"qos", cfg.MQTT.QoS, byte(1)},
		{"mqtt.max_retries", cfg.MQTT.MaxRetries, 3},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"odb.url", cfg.ODB.URL, "http://odb.example:8442/programexport"},
		{"odb.cache_dir", cfg.ODB.CacheDir, "/tmp/odb"},
		{"odb.timeout", cfg.ODB.Timeout, 10 * time.Second},
		{"odb.auth", cfg.ODB.Auth.Enabled(), true},
		{"sentry.environment", cfg.Sentry.Environment, "staging"},
		{"sentry.traces_sample_rate", cfg.Sentry.TracesSampleRate, 0.1},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
}

func TestLoadJSONDefaults(t *testing.T) {
	cfg, err := Load(write(t, "config.json", `{"planning": {"workers": 2}}`))
	require.NoError(t, err)
	assert.Equal(t, atoms.ScopeConfiguration, cfg.Segmentation.OffsetScope)
	assert.Equal(t, 2, cfg.Planning.Workers)
	assert.Equal(t, "skyplan.db", cfg.Store.Path)
	assert.False(t, cfg.Store.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "skyplan", cfg.MQTT.TopicPrefix)
	assert.Equal(t, 30*time.Second, cfg.ODB.Timeout)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SKYPLAN_PLANNING__WORKERS", "7")
	t.Setenv("SKYPLAN_MQTT__BROKER", "tcp://broker:1883")
	cfg, err := Load(write(t, "config.yaml", "planning:\n  workers: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Planning.Workers)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"format", "config.toml", "x = 1"},
		{"scope", "config.yaml", "segmentation:\n  offset_scope: night\n"},
		{"workers", "config.yaml", "planning:\n  workers: -2\n"},
		{"mqtt", "config.yaml", "mqtt:\n  enabled: true\n"},
		{"level", "config.yaml", "logging:\n  level: loud\n"},
		{"sentry", "config.yaml", "sentry:\n  traces_sample_rate: 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, tt.file, tt.data))
			assert.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.GreaterOrEqual(t, cfg.Planning.Workers, 1)
}
