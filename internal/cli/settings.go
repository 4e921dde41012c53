package cli

import (
	"math"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/reservoir/config"
	"github.com/wesleyorama2/reservoir/metrics"
	"github.com/wesleyorama2/reservoir/reservoir"
)

// reservoirFlags are the flags shared by commands that build a reservoir.
type reservoirFlags struct {
	configPath string
	kind       string
	size       int
}

func (f *reservoirFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "configuration file (YAML or JSON)")
	cmd.Flags().StringVarP(&f.kind, "type", "t", "", "reservoir type (uniform, sliding-window, exponentially-decaying, hdr-histogram)")
	cmd.Flags().IntVarP(&f.size, "size", "s", 0, "number of samples kept by bounded reservoirs")
}

// load resolves the configuration: the file if one is given, then the
// command line overrides, then defaults.
func (f *reservoirFlags) load(cmd *cobra.Command, logger logrus.FieldLogger) (*config.Config, error) {
	cfg := &config.Config{}
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("type") {
		cfg.Reservoir.Type = f.kind
	}
	if cmd.Flags().Changed("size") {
		cfg.Reservoir.Size = f.size
	}

	if applied := cfg.ApplyDefaults(); len(applied) > 0 {
		logger.WithField("fields", applied).Info("applied configuration defaults")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newReservoir builds the configured reservoir along with its kind.
func newReservoir(cfg *config.Config, logger logrus.FieldLogger) (reservoir.Reservoir, reservoir.Kind, error) {
	opts := append(cfg.BuilderOptions(), metrics.WithLogger(logger))
	b, err := metrics.NewBuilder(opts...)
	if err != nil {
		return nil, "", err
	}
	return b.Reservoir(), b.Kind(), nil
}

// capacity is the most samples a reservoir of this configuration holds.
func capacity(cfg *config.Config, kind reservoir.Kind) int {
	if kind == reservoir.KindHdrHistogram {
		return math.MaxInt32
	}
	return cfg.Reservoir.Size
}
