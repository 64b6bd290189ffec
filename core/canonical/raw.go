package canonical

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kilianp07/skyplan/core/model"
)

// RawStep is one step of an extractor sequence, keyed by field name.
type RawStep map[string]any

// LogEntry is one entry of an observation log.
type LogEntry struct {
	Label    string `json:"label" yaml:"label"`
	QAState  string `json:"qaState" yaml:"qaState"`
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty"`
}

// RawObservation is an observation as delivered by the program provider.
type RawObservation struct {
	ID       string     `json:"observationId" yaml:"observationId"`
	Site     model.Site `json:"site" yaml:"site"`
	Band     int        `json:"band,omitempty" yaml:"band,omitempty"`
	ToO      bool       `json:"too,omitempty" yaml:"too,omitempty"`
	Score    float64    `json:"score,omitempty" yaml:"score,omitempty"`
	Sequence []RawStep  `json:"sequence" yaml:"sequence"`
	ObsLog   []LogEntry `json:"obsLog,omitempty" yaml:"obsLog,omitempty"`
}

// str returns the value of key rendered as a string.
func (r RawStep) str(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return fmt.Sprint(t), true
	}
}

func (r RawStep) requireStr(key string) (string, error) {
	s, ok := r.str(key)
	if !ok {
		return "", &model.ConfigurationError{Field: key, Reason: "missing required field"}
	}
	return s, nil
}

// num parses key as a float. ok is false when the key is absent.
func (r RawStep) num(key string) (float64, bool, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch t := v.(type) {
	case float64:
		return t, true, nil
	case int:
		return float64(t), true, nil
	case int64:
		return float64(t), true, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, true, &model.ConfigurationError{Field: key, Value: t.String(), Reason: "not a number"}
		}
		return f, true, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, true, &model.ConfigurationError{Field: key, Value: t, Reason: "not a number"}
		}
		return f, true, nil
	default:
		return 0, true, &model.ConfigurationError{Field: key, Value: fmt.Sprint(t), Reason: "not a number"}
	}
}

func (r RawStep) requireNum(key string) (float64, error) {
	f, ok, err := r.num(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &model.ConfigurationError{Field: key, Reason: "missing required field"}
	}
	return f, nil
}
