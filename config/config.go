// Package config loads the skyplan configuration from a file with
// environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/skyplan/core/atoms"
	"github.com/kilianp07/skyplan/core/metrics"
	"github.com/kilianp07/skyplan/core/scheduler"
	"github.com/kilianp07/skyplan/infra/monitoring"
	"github.com/kilianp07/skyplan/infra/mqtt"
	"github.com/kilianp07/skyplan/pkg/odb"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nested keys, e.g. SKYPLAN_MQTT__BROKER.
const EnvPrefix = "SKYPLAN_"

type Config struct {
	Segmentation atoms.Config      `json:"segmentation"`
	Planning     scheduler.Config  `json:"planning"`
	Metrics      metrics.Config    `json:"metrics"`
	Store        StoreConfig       `json:"store"`
	MQTT         mqtt.Config       `json:"mqtt"`
	Logging      LoggingConfig     `json:"logging"`
	ODB          odb.ClientConfig  `json:"odb"`
	Sentry       monitoring.Config `json:"sentry"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

func envKey(s string) string {
	s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Segmentation.SetDefaults()
	c.Planning.SetDefaults()
	c.Store.SetDefaults()
	c.MQTT.SetDefaults()
	c.Logging.SetDefaults()
	c.ODB.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Segmentation.Validate(); err != nil {
		return fmt.Errorf("segmentation: %w", err)
	}
	if err := c.Planning.Validate(); err != nil {
		return fmt.Errorf("planning: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	return nil
}
