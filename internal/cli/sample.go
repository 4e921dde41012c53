package cli

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/reservoir/internal/output"
	"github.com/wesleyorama2/reservoir/pkg/jsonpath"
)

type observation struct {
	value int64
	label string
}

func newSampleCmd(a *app) *cobra.Command {
	var (
		flags     reservoirFlags
		jsonPath  string
		labelPath string
	)

	cmd := &cobra.Command{
		Use:   "sample [file]",
		Short: "Feed values into a reservoir and print its snapshot",
		Long: `Reads values from a file, or standard input when no file is given, and
prints the snapshot of a reservoir fed with them.

Plain input holds one value per line, optionally followed by a comma and a
label. Blank lines and lines starting with # are skipped. Values are
rounded to the nearest integer.

With --json-path the input is a JSON document and the values (and, with
--label-path, their labels) are selected with a JSONPath expression.`,
		Example: `  reservoir sample latencies.txt --type hdr-histogram
  cat requests.json | reservoir sample --json-path '$.requests[*].latency' --label-path '$.requests[*].id'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if labelPath != "" && jsonPath == "" {
				return errors.Wrap(errdefs.ErrInvalidArgument, "--label-path requires --json-path")
			}

			cfg, err := flags.load(cmd, a.logger)
			if err != nil {
				return err
			}
			r, kind, err := newReservoir(cfg, a.logger)
			if err != nil {
				return err
			}
			f, err := a.formatter(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 1 {
				file, err := os.Open(args[0])
				if err != nil {
					if os.IsNotExist(err) {
						return errors.Wrapf(errdefs.ErrNotFound, "input file not found: %s", args[0])
					}
					return errors.Wrapf(err, "failed to open input file %s", args[0])
				}
				defer file.Close()
				in = file
			}

			var observations []observation
			if jsonPath != "" {
				observations, err = readJSON(in, jsonPath, labelPath)
			} else {
				observations, err = readLines(in)
			}
			if err != nil {
				return err
			}

			for _, o := range observations {
				r.Update(o.value, o.label)
			}
			a.logger.WithField("count", len(observations)).Debug("values sampled")

			report := output.NewSnapshotReport(kind, r.GetSnapshot(false))
			return f.WriteSnapshot(cmd.OutOrStdout(), report)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&jsonPath, "json-path", "", "JSONPath selecting the values in a JSON document")
	cmd.Flags().StringVar(&labelPath, "label-path", "", "JSONPath selecting one label per value")
	return cmd
}

// readLines parses "value[,label]" lines.
func readLines(r io.Reader) ([]observation, error) {
	var observations []observation
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		raw, label, _ := strings.Cut(text, ",")
		v, err := parseValue(strings.TrimSpace(raw))
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		observations = append(observations, observation{value: v, label: strings.TrimSpace(label)})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read input")
	}
	return observations, nil
}

func readJSON(r io.Reader, valuePath, labelPath string) ([]observation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read input")
	}
	doc := string(data)

	numbers, err := jsonpath.ExtractNumbers(doc, valuePath)
	if err != nil {
		return nil, err
	}
	var labels []string
	if labelPath != "" {
		if labels, err = jsonpath.ExtractStrings(doc, labelPath); err != nil {
			return nil, err
		}
		if len(labels) != len(numbers) {
			return nil, errors.Wrapf(errdefs.ErrInvalidArgument,
				"%s selected %d labels for %d values", labelPath, len(labels), len(numbers))
		}
	}

	observations := make([]observation, len(numbers))
	for i, n := range numbers {
		v, err := roundValue(n)
		if err != nil {
			return nil, err
		}
		observations[i].value = v
		if labels != nil {
			observations[i].label = labels[i]
		}
	}
	return observations, nil
}

func parseValue(s string) (int64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(errdefs.ErrInvalidArgument, "invalid value %q", s)
	}
	return roundValue(f)
}

func roundValue(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return 0, errors.Wrapf(errdefs.ErrInvalidArgument, "value out of range: %v", f)
	}
	return int64(math.Round(f)), nil
}
