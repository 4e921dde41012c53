package config

import (
	_ "embed"
	"encoding/json"
	"time"

	"github.com/wesleyorama2/reservoir/pkg/jsonschema"
)

// Config is the root of a configuration file.
type Config struct {
	Reservoir ReservoirConfig `json:"reservoir,omitempty" yaml:"reservoir,omitempty"`
	Metrics   MetricsConfig   `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// ReservoirConfig selects and tunes the reservoir used by histograms and
// timers.
type ReservoirConfig struct {
	// Type is one of uniform, sliding-window, exponentially-decaying or
	// hdr-histogram.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Size is the number of samples kept by bounded reservoirs.
	Size int `json:"size,omitempty" yaml:"size,omitempty"`

	// Alpha is the decay factor of the exponentially decaying reservoir.
	Alpha float64 `json:"alpha,omitempty" yaml:"alpha,omitempty"`

	// SignificantDigits is the precision of the HDR reservoir (1-5).
	SignificantDigits int `json:"significantDigits,omitempty" yaml:"significantDigits,omitempty"`

	// HighestTrackableValue is the upper bound of the HDR reservoir.
	HighestTrackableValue int64 `json:"highestTrackableValue,omitempty" yaml:"highestTrackableValue,omitempty"`
}

// MetricsConfig configures the instruments built on top of reservoirs.
type MetricsConfig struct {
	// TickInterval is how often moving averages advance (e.g. "5s").
	TickInterval Duration `json:"tickInterval,omitempty" yaml:"tickInterval,omitempty"`

	// RateUnit is the unit meter rates are reported in (e.g. "s", "min").
	RateUnit string `json:"rateUnit,omitempty" yaml:"rateUnit,omitempty"`

	// DurationUnit is the unit timer durations are reported in (e.g. "ms").
	DurationUnit string `json:"durationUnit,omitempty" yaml:"durationUnit,omitempty"`
}

// Duration is a time.Duration that can be unmarshaled from JSON/YAML strings.
type Duration time.Duration

// GetDuration returns the duration, or defaultValue when unset.
func (d Duration) GetDuration(defaultValue time.Duration) time.Duration {
	if d == 0 {
		return defaultValue
	}
	return time.Duration(d)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.set(s)
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *Duration) set(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	dur, err := ParseDurationString(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// String returns the duration as a string.
func (d Duration) String() string {
	return time.Duration(d).String()
}

//go:embed schema.json
var schemaJSON string

var documentSchema = jsonschema.MustCompile(schemaJSON)

// Schema returns the JSON schema configuration documents must satisfy.
func Schema() string { return schemaJSON }
