package model

import "fmt"

// ConfigurationError reports an unsupported instrument or a required
// canonical field that is missing and has no default.
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("configuration: %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// MalformedSequenceError reports a sequence that cannot be segmented.
type MalformedSequenceError struct {
	ObservationID string
	Reason        string
}

func (e *MalformedSequenceError) Error() string {
	if e.ObservationID == "" {
		return "malformed sequence: " + e.Reason
	}
	return fmt.Sprintf("malformed sequence %s: %s", e.ObservationID, e.Reason)
}

// CapacityExceededError is returned when a placement does not fit the
// remaining capacity of a plan.
type CapacityExceededError struct {
	Site      Site
	Requested int
	Left      int
	Reason    string
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded on %s: requested %d slots, %d left: %s", e.Site, e.Requested, e.Left, e.Reason)
}
