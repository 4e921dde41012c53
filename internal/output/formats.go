package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/containerd/errdefs"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/reservoir/reservoir"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat parses an output format name.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", errors.Wrapf(errdefs.ErrInvalidArgument, "unknown output format %q", s)
	}
}

// SnapshotReport is the printable summary of a reservoir snapshot.
type SnapshotReport struct {
	Reservoir     string  `json:"reservoir" yaml:"reservoir"`
	Count         int64   `json:"count" yaml:"count"`
	Size          int     `json:"size" yaml:"size"`
	Min           int64   `json:"min" yaml:"min"`
	MinLabel      string  `json:"minLabel,omitempty" yaml:"minLabel,omitempty"`
	Max           int64   `json:"max" yaml:"max"`
	MaxLabel      string  `json:"maxLabel,omitempty" yaml:"maxLabel,omitempty"`
	Mean          float64 `json:"mean" yaml:"mean"`
	StdDev        float64 `json:"stdDev" yaml:"stdDev"`
	Median        float64 `json:"median" yaml:"median"`
	Percentile75  float64 `json:"p75" yaml:"p75"`
	Percentile95  float64 `json:"p95" yaml:"p95"`
	Percentile98  float64 `json:"p98" yaml:"p98"`
	Percentile99  float64 `json:"p99" yaml:"p99"`
	Percentile999 float64 `json:"p999" yaml:"p999"`
}

// NewSnapshotReport summarizes s, taken from a reservoir of the given kind.
func NewSnapshotReport(kind reservoir.Kind, s reservoir.Snapshot) SnapshotReport {
	return SnapshotReport{
		Reservoir:     kind.String(),
		Count:         s.Count(),
		Size:          s.Size(),
		Min:           s.Min(),
		MinLabel:      s.MinLabel(),
		Max:           s.Max(),
		MaxLabel:      s.MaxLabel(),
		Mean:          s.Mean(),
		StdDev:        s.StdDev(),
		Median:        s.Median(),
		Percentile75:  s.Percentile75(),
		Percentile95:  s.Percentile95(),
		Percentile98:  s.Percentile98(),
		Percentile99:  s.Percentile99(),
		Percentile999: s.Percentile999(),
	}
}

// StressReport is the outcome of a concurrent update run.
type StressReport struct {
	Reservoir  string   `json:"reservoir" yaml:"reservoir"`
	Goroutines int      `json:"goroutines" yaml:"goroutines"`
	Updates    int      `json:"updatesPerGoroutine" yaml:"updatesPerGoroutine"`
	Count      int64    `json:"count" yaml:"count"`
	Size       int      `json:"size" yaml:"size"`
	Capacity   int      `json:"capacity" yaml:"capacity"`
	Elapsed    string   `json:"elapsed" yaml:"elapsed"`
	Violations []string `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// Passed reports whether the run found no violations.
func (r StressReport) Passed() bool { return len(r.Violations) == 0 }

// Formatter renders reports in one output format.
type Formatter struct {
	Format OutputFormat
	Colors *ColorScheme
}

// NewFormatter creates a formatter. A nil scheme disables colors.
func NewFormatter(format OutputFormat, colors *ColorScheme) *Formatter {
	if colors == nil {
		colors = NoColorScheme()
	}
	return &Formatter{Format: format, Colors: colors}
}

// WriteSnapshot renders a snapshot report.
func (f *Formatter) WriteSnapshot(w io.Writer, r SnapshotReport) error {
	if f.Format != FormatText {
		return f.encode(w, r)
	}

	c := f.Colors
	fmt.Fprintf(w, "%s %s\n", c.Heading.Sprint("reservoir"), c.Highlight.Sprint(r.Reservoir))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(label, value, userValue string) {
		if userValue != "" {
			value += " " + c.UserValue.Sprintf("[%s]", userValue)
		}
		fmt.Fprintf(tw, "  %s\t%s\n", c.Label.Sprint(label), value)
	}
	num := func(v float64) string { return c.Value.Sprint(formatFloat(v)) }

	row("count", c.Value.Sprint(r.Count), "")
	row("size", c.Value.Sprint(r.Size), "")
	row("min", c.Value.Sprint(r.Min), r.MinLabel)
	row("max", c.Value.Sprint(r.Max), r.MaxLabel)
	row("mean", num(r.Mean), "")
	row("stddev", num(r.StdDev), "")
	row("median", num(r.Median), "")
	row("p75", num(r.Percentile75), "")
	row("p95", num(r.Percentile95), "")
	row("p98", num(r.Percentile98), "")
	row("p99", num(r.Percentile99), "")
	row("p99.9", num(r.Percentile999), "")
	return tw.Flush()
}

// WriteStress renders a stress report.
func (f *Formatter) WriteStress(w io.Writer, r StressReport) error {
	if f.Format != FormatText {
		return f.encode(w, r)
	}

	c := f.Colors
	status := c.Success.Sprint("✓ passed")
	if !r.Passed() {
		status = c.Error.Sprint("✗ failed")
	}

	fmt.Fprintf(w, "%s %s  %s\n", c.Heading.Sprint("stress"), c.Highlight.Sprint(r.Reservoir), status)
	fmt.Fprintf(w, "  %s %d x %d updates in %s\n", c.Label.Sprint("ran"), r.Goroutines, r.Updates, r.Elapsed)
	fmt.Fprintf(w, "  %s %d  %s %d/%d\n", c.Label.Sprint("count"), r.Count, c.Label.Sprint("size"), r.Size, r.Capacity)
	for _, v := range r.Violations {
		fmt.Fprintf(w, "  %s\n", c.Error.Sprint("✗ "+v))
	}
	return nil
}

func (f *Formatter) encode(w io.Writer, v interface{}) error {
	switch f.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "failed to encode JSON output")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "failed to encode YAML output")
		}
		return errors.Wrap(enc.Close(), "failed to encode YAML output")
	default:
		return errors.Wrapf(errdefs.ErrInvalidArgument, "unknown output format %q", string(f.Format))
	}
}

func formatFloat(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
