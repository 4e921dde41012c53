package reservoir

import (
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultSize is the default number of samples kept by bounded reservoirs.
	DefaultSize = 1028

	// DefaultAlpha is the default decay factor of the exponentially decaying
	// reservoir. It heavily biases the reservoir towards the last five minutes.
	DefaultAlpha = 0.015

	// DefaultSignificantDigits is the default precision of the HDR reservoir.
	DefaultSignificantDigits = 2

	// DefaultHighestTrackableValue is the default upper bound of the HDR
	// reservoir: one hour expressed in nanoseconds.
	DefaultHighestTrackableValue = int64(time.Hour)

	// RescaleThreshold is the interval between landmark rescales of the
	// exponentially decaying reservoir.
	RescaleThreshold = time.Hour
)

type options struct {
	size                  int
	alpha                 float64
	significantDigits     int
	highestTrackableValue int64
	clock                 clock.Clock
	logger                logrus.FieldLogger
	random                Random
}

// Option configures a reservoir built by New or one of the New* constructors.
// Out-of-range values are ignored and the default is kept.
type Option func(*options)

// WithSize sets the number of samples kept by Uniform, SlidingWindow and
// ExponentiallyDecaying reservoirs.
func WithSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.size = size
		}
	}
}

// WithAlpha sets the decay factor of the ExponentiallyDecaying reservoir.
func WithAlpha(alpha float64) Option {
	return func(o *options) {
		if alpha > 0 {
			o.alpha = alpha
		}
	}
}

// WithSignificantDigits sets the HDR precision, between 1 and 5.
func WithSignificantDigits(digits int) Option {
	return func(o *options) {
		if digits >= 1 && digits <= 5 {
			o.significantDigits = digits
		}
	}
}

// WithHighestTrackableValue sets the largest value the HDR reservoir can
// bucket. Larger values are clamped; the exact maximum is still reported.
func WithHighestTrackableValue(v int64) Option {
	return func(o *options) {
		if v >= 2 {
			o.highestTrackableValue = v
		}
	}
}

// WithClock sets the time source used for decay and rescaling.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the logger for rare events such as rescales.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRandom sets the source of randomness for admission decisions.
func WithRandom(r Random) Option {
	return func(o *options) {
		if r != nil {
			o.random = r
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		size:                  DefaultSize,
		alpha:                 DefaultAlpha,
		significantDigits:     DefaultSignificantDigits,
		highestTrackableValue: DefaultHighestTrackableValue,
		clock:                 clock.NewClock(),
		logger:                logrus.StandardLogger(),
		random:                runtimeRandom{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
