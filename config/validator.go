package config

import (
	"fmt"
	"strings"

	"github.com/containerd/errdefs"

	"github.com/wesleyorama2/reservoir/metrics"
	"github.com/wesleyorama2/reservoir/reservoir"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the dotted path to the invalid field
	Path string

	// Message describes the validation error
	Message string
}

// Error returns the error message.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors. It matches
// errdefs.IsInvalidArgument.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

func (e ValidationErrors) Is(target error) bool {
	return target == errdefs.ErrInvalidArgument
}

func (e *ValidationErrors) add(path, message string) {
	*e = append(*e, ValidationError{Path: path, Message: message})
}

// Validate checks the configuration and returns nil, or ValidationErrors
// listing every problem found. Zero values are accepted as "use the default".
func (c *Config) Validate() error {
	var errs ValidationErrors

	validateReservoir(&c.Reservoir, &errs)
	validateMetrics(&c.Metrics, &errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateReservoir(r *ReservoirConfig, errs *ValidationErrors) {
	kind, err := r.Kind()
	if err != nil {
		errs.add("reservoir.type", fmt.Sprintf("unknown reservoir type: %s", r.Type))
	}

	if r.Size < 0 {
		errs.add("reservoir.size", "size must be positive")
	}
	if r.Alpha < 0 {
		errs.add("reservoir.alpha", "alpha must be positive")
	}
	if r.SignificantDigits < 0 || r.SignificantDigits > 5 {
		errs.add("reservoir.significantDigits", "significantDigits must be between 1 and 5")
	}
	if r.HighestTrackableValue < 0 || r.HighestTrackableValue == 1 {
		errs.add("reservoir.highestTrackableValue", "highestTrackableValue must be at least 2")
	}

	if err != nil {
		return
	}
	if kind == reservoir.KindHdrHistogram && r.Size > 0 && r.Size != reservoir.DefaultSize {
		errs.add("reservoir.size", "size does not apply to hdr-histogram reservoirs")
	}
	if kind != reservoir.KindExponentiallyDecaying && r.Alpha > 0 && r.Alpha != reservoir.DefaultAlpha {
		errs.add("reservoir.alpha", "alpha only applies to exponentially-decaying reservoirs")
	}
}

func validateMetrics(m *MetricsConfig, errs *ValidationErrors) {
	if m.TickInterval < 0 {
		errs.add("metrics.tickInterval", "tickInterval must be positive")
	}
	if m.RateUnit != "" {
		if _, err := metrics.ParseTimeUnit(m.RateUnit); err != nil {
			errs.add("metrics.rateUnit", fmt.Sprintf("unknown time unit: %s", m.RateUnit))
		}
	}
	if m.DurationUnit != "" {
		if _, err := metrics.ParseTimeUnit(m.DurationUnit); err != nil {
			errs.add("metrics.durationUnit", fmt.Sprintf("unknown time unit: %s", m.DurationUnit))
		}
	}
}
