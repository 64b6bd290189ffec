package atoms

import "fmt"

// Scope selects which steps the offset pattern detector looks at.
type Scope string

const (
	// ScopeConfiguration detects one pattern per run of steps sharing a
	// wavelength.
	ScopeConfiguration Scope = "configuration"
	// ScopeSequence detects one pattern over the whole sequence.
	ScopeSequence Scope = "sequence"
)

// Config holds the segmentation settings.
type Config struct {
	OffsetScope Scope `json:"offset_scope"`
	// ExptimeGroups disables offset splitting for sequences without a
	// repeating pattern, leaving exposure changes as the only split.
	ExptimeGroups bool `json:"exptime_groups"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.OffsetScope == "" {
		c.OffsetScope = ScopeConfiguration
	}
}

// Validate checks the configured scope.
func (c Config) Validate() error {
	switch c.OffsetScope {
	case ScopeConfiguration, ScopeSequence:
		return nil
	}
	return fmt.Errorf("unknown offset_scope %q", c.OffsetScope)
}
