// Package odb loads observation extracts and night events from JSON or
// YAML files.
package odb

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/skyplan/core/canonical"
	"github.com/kilianp07/skyplan/core/plan"
)

// Format returns the decoding format of path from its extension.
func Format(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return "yaml", nil
	case ".json":
		return "json", nil
	default:
		return "", fmt.Errorf("unsupported file format: %s", ext)
	}
}

func decode(r io.Reader, format string, out any) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return yaml.NewDecoder(r).Decode(out)
	case "json":
		dec := json.NewDecoder(r)
		dec.UseNumber()
		return dec.Decode(out)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func load(path string, out any) error {
	format, err := Format(path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := decode(f, format, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

type observationFile struct {
	Observations []canonical.RawObservation `json:"observations" yaml:"observations"`
}

// DecodeObservations reads an observations document from r.
func DecodeObservations(r io.Reader, format string) ([]canonical.RawObservation, error) {
	var doc observationFile
	if err := decode(r, format, &doc); err != nil {
		return nil, err
	}
	return doc.Observations, nil
}

// LoadObservations reads the raw observations of a JSON or YAML file of
// the form {"observations": [...]}.
func LoadObservations(path string) ([]canonical.RawObservation, error) {
	var doc observationFile
	if err := load(path, &doc); err != nil {
		return nil, err
	}
	return doc.Observations, nil
}

type nightFile struct {
	Sites []plan.NightEvents `json:"sites" yaml:"sites"`
}

// DecodeNightEvents reads a night events document from r.
func DecodeNightEvents(r io.Reader, format string) ([]plan.NightEvents, error) {
	var doc nightFile
	if err := decode(r, format, &doc); err != nil {
		return nil, err
	}
	return doc.Sites, nil
}

// LoadNightEvents reads per-site night timing of the form {"sites": [...]}.
func LoadNightEvents(path string) ([]plan.NightEvents, error) {
	var doc nightFile
	if err := load(path, &doc); err != nil {
		return nil, err
	}
	return doc.Sites, nil
}
