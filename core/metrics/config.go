package metrics

import "github.com/kilianp07/skyplan/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusPort serves /metrics when set, e.g. ":2112".
	PrometheusPort string `json:"prometheus_port"`
}
