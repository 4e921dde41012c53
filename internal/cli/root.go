package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/reservoir/internal/output"
)

var version = "0.1.0"

// app holds the state shared by every subcommand of one invocation.
type app struct {
	logger   *logrus.Logger
	logLevel string
	format   string
	json     bool
	noColor  bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{logger: logrus.New()}

	root := &cobra.Command{
		Use:     "reservoir",
		Short:   "Sample value streams into reservoirs and inspect their statistics",
		Version: version,
		Long: `reservoir feeds values into one of the sampling reservoirs used by the
metrics library (uniform, sliding-window, exponentially-decaying or
hdr-histogram) and reports the resulting snapshot: count, size, extremes,
mean, standard deviation and percentiles.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(a.logLevel)
			if err != nil {
				return err
			}
			a.logger.SetLevel(level)
			a.logger.SetOutput(cmd.ErrOrStderr())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", "warning", "log level (debug, info, warning, error)")
	flags.StringVarP(&a.format, "format", "o", "text", "output format (text, json, yaml)")
	flags.BoolVar(&a.json, "json", false, "shorthand for --format json")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newSampleCmd(a))
	root.AddCommand(newStressCmd(a))
	root.AddCommand(newValidateCmd(a))
	return root
}

// formatter returns the formatter selected by the output flags for w.
func (a *app) formatter(w io.Writer) (*output.Formatter, error) {
	format, err := output.ParseFormat(a.format)
	if err != nil {
		return nil, err
	}
	if a.json {
		format = output.FormatJSON
	}
	return output.NewFormatter(format, output.SchemeFor(w, a.noColor)), nil
}

// Execute runs the command line and reports errors on stderr.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
