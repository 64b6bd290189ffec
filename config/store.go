package config

import "fmt"

// StoreConfig defines where scheduling runs are persisted.
type StoreConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "skyplan.db"
	}
}

// Validate checks mandatory fields.
func (c StoreConfig) Validate() error {
	if c.Enabled && c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}
