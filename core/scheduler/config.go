package scheduler

import (
	"fmt"
	"runtime"

	"github.com/kilianp07/skyplan/core/plan"
)

// Config holds the planning settings.
type Config struct {
	// Workers bounds the number of observations segmented concurrently.
	Workers int `json:"workers"`
	// PermissiveCapacity lets plans accept placements past their capacity.
	PermissiveCapacity bool            `json:"permissive_capacity"`
	Conditions         plan.Conditions `json:"conditions"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate checks the worker count.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// PlanOptions returns the plan options matching the configuration.
func (c Config) PlanOptions() []plan.Option {
	if c.PermissiveCapacity {
		return []plan.Option{plan.PermissiveCapacity()}
	}
	return nil
}
