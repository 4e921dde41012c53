package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/containerd/errdefs"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/reservoir/metrics"
	"github.com/wesleyorama2/reservoir/reservoir"
)

// LoadConfig loads a configuration from a file.
//
// The file format is determined by extension:
//   - .yaml, .yml -> YAML
//   - .json -> JSON
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errdefs.ErrNotFound, "config file not found: %s", path)
		}
		return nil, errors.Wrap(err, "failed to read config file")
	}

	return ParseConfig(data, path)
}

// ParseConfig checks data against the configuration schema and decodes it.
//
// The format is determined by the file extension in path, or defaults to
// YAML if the path is empty or has an unknown extension. Defaults are not
// applied.
func ParseConfig(data []byte, path string) (*Config, error) {
	var (
		doc    interface{}
		config Config
	)

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, "failed to parse JSON config")
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, "failed to parse YAML config")
		}
		// an empty YAML document decodes to nil
		if doc == nil {
			doc = map[string]interface{}{}
		}
	}

	normalized, err := normalize(doc)
	if err != nil {
		return nil, err
	}
	if errs := documentSchema.ValidateDocument(normalized); errs != nil {
		return nil, errors.Wrap(errs, "config does not match schema")
	}

	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, errors.Wrap(err, "failed to re-encode config")
	}
	if err := json.Unmarshal(raw, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	return &config, nil
}

// normalize turns a decoded YAML or JSON document into the shape
// json.Unmarshal produces, which is what the schema validator expects.
func normalize(doc interface{}) (interface{}, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "config is not representable as JSON")
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "config is not representable as JSON")
	}
	return out, nil
}

// ParseDurationString parses a duration string with support for common formats.
//
// Supported formats:
//   - Standard Go duration: "30s", "2m", "1h30m", "500ms"
//   - Seconds as integer: "30" (treated as 30 seconds)
func ParseDurationString(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}

	var seconds int
	if _, err := fmt.Sscanf(s, "%d", &seconds); err == nil && fmt.Sprint(seconds) == s {
		return time.Duration(seconds) * time.Second, nil
	}

	return 0, errors.Wrapf(errdefs.ErrInvalidArgument, "invalid duration format: %s", s)
}

// Marshal encodes the configuration as JSON or YAML, chosen by the
// extension of path like ParseConfig.
func (c *Config) Marshal(path string) ([]byte, error) {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		data, err := json.MarshalIndent(c, "", "  ")
		return data, errors.Wrap(err, "failed to encode JSON config")
	}
	data, err := yaml.Marshal(c)
	return data, errors.Wrap(err, "failed to encode YAML config")
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills unset fields with their defaults and returns the
// paths of the fields it set.
func (c *Config) ApplyDefaults() []string {
	var applied []string
	set := func(path string, unset bool, apply func()) {
		if unset {
			apply()
			applied = append(applied, path)
		}
	}

	r := &c.Reservoir
	set("reservoir.type", r.Type == "", func() { r.Type = reservoir.DefaultKind.String() })
	set("reservoir.size", r.Size == 0, func() { r.Size = reservoir.DefaultSize })
	set("reservoir.alpha", r.Alpha == 0, func() { r.Alpha = reservoir.DefaultAlpha })
	set("reservoir.significantDigits", r.SignificantDigits == 0, func() {
		r.SignificantDigits = reservoir.DefaultSignificantDigits
	})
	set("reservoir.highestTrackableValue", r.HighestTrackableValue == 0, func() {
		r.HighestTrackableValue = reservoir.DefaultHighestTrackableValue
	})

	m := &c.Metrics
	set("metrics.tickInterval", m.TickInterval == 0, func() { m.TickInterval = Duration(metrics.TickInterval) })
	set("metrics.rateUnit", m.RateUnit == "", func() { m.RateUnit = metrics.Seconds.String() })
	set("metrics.durationUnit", m.DurationUnit == "", func() { m.DurationUnit = metrics.Milliseconds.String() })

	return applied
}

// Kind returns the configured reservoir kind.
func (c ReservoirConfig) Kind() (reservoir.Kind, error) {
	return reservoir.ParseKind(c.Type)
}

// Options translates the configuration into reservoir options. Unset fields
// keep the reservoir defaults.
func (c ReservoirConfig) Options() []reservoir.Option {
	var opts []reservoir.Option
	if c.Size != 0 {
		opts = append(opts, reservoir.WithSize(c.Size))
	}
	if c.Alpha != 0 {
		opts = append(opts, reservoir.WithAlpha(c.Alpha))
	}
	if c.SignificantDigits != 0 {
		opts = append(opts, reservoir.WithSignificantDigits(c.SignificantDigits))
	}
	if c.HighestTrackableValue != 0 {
		opts = append(opts, reservoir.WithHighestTrackableValue(c.HighestTrackableValue))
	}
	return opts
}

// BuilderOptions translates the configuration into metrics builder options.
// Invalid values surface as errors from metrics.NewBuilder; call Validate
// first for a complete report.
func (c *Config) BuilderOptions() []metrics.Option {
	opts := []metrics.Option{
		metrics.WithReservoirOptions(c.Reservoir.Options()...),
	}
	if c.Reservoir.Type != "" {
		opts = append(opts, func(b *metrics.Builder) error {
			kind, err := c.Reservoir.Kind()
			if err != nil {
				return err
			}
			return metrics.WithReservoirKind(kind)(b)
		})
	}
	if c.Metrics.TickInterval != 0 {
		opts = append(opts, metrics.WithTickInterval(time.Duration(c.Metrics.TickInterval)))
	}
	if c.Metrics.RateUnit != "" {
		opts = append(opts, unitOption(c.Metrics.RateUnit, metrics.WithRateUnit))
	}
	if c.Metrics.DurationUnit != "" {
		opts = append(opts, unitOption(c.Metrics.DurationUnit, metrics.WithDurationUnit))
	}
	return opts
}

func unitOption(name string, with func(metrics.TimeUnit) metrics.Option) metrics.Option {
	return func(b *metrics.Builder) error {
		u, err := metrics.ParseTimeUnit(name)
		if err != nil {
			return err
		}
		return with(u)(b)
	}
}
