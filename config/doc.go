// Package config loads and validates reservoir configuration files.
//
// A configuration file is YAML or JSON, chosen by extension:
//
//	reservoir:
//	  type: exponentially-decaying
//	  size: 1028
//	  alpha: 0.015
//	  significantDigits: 2
//	  highestTrackableValue: 3600000000000
//	metrics:
//	  tickInterval: 5s
//	  rateUnit: s
//	  durationUnit: ms
//
// Basic usage:
//
//	cfg, err := config.LoadConfig("reservoir.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	builder, err := metrics.NewBuilder(cfg.BuilderOptions()...)
//
// LoadConfig checks the document against an embedded JSON schema before
// decoding it, so unknown keys and wrongly typed values are reported with
// their location. Validate then checks the semantic rules the schema cannot
// express.
package config
