package metrics

import (
	"slices"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/containerd/errdefs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/wesleyorama2/reservoir/reservoir"
)

// Builder creates instruments that share a clock, logger, units and
// reservoir configuration. Meters and timers it builds are registered with
// its Scheduler. A Builder holds no global state; create one per registry.
type Builder struct {
	kind          reservoir.Kind
	reservoirOpts []reservoir.Option
	clock         clock.Clock
	logger        logrus.FieldLogger
	rateUnit      TimeUnit
	durationUnit  TimeUnit
	tickInterval  time.Duration
	scheduler     *Scheduler
}

// Option configures a Builder.
type Option func(*Builder) error

// WithReservoirKind selects the reservoir algorithm used by histograms and
// timers.
func WithReservoirKind(kind reservoir.Kind) Option {
	return func(b *Builder) error {
		if kind != "" && !slices.Contains(reservoir.Kinds, kind) {
			return errors.Wrapf(errdefs.ErrInvalidArgument, "unknown reservoir type %q", string(kind))
		}
		b.kind = kind
		return nil
	}
}

// WithReservoirOptions appends options passed to every reservoir.
func WithReservoirOptions(opts ...reservoir.Option) Option {
	return func(b *Builder) error {
		b.reservoirOpts = append(b.reservoirOpts, opts...)
		return nil
	}
}

func WithClock(c clock.Clock) Option {
	return func(b *Builder) error {
		if c == nil {
			return errors.Wrap(errdefs.ErrInvalidArgument, "clock must not be nil")
		}
		b.clock = c
		return nil
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Builder) error {
		if l == nil {
			return errors.Wrap(errdefs.ErrInvalidArgument, "logger must not be nil")
		}
		b.logger = l
		return nil
	}
}

// WithRateUnit sets the unit meters report rates in.
func WithRateUnit(u TimeUnit) Option {
	return func(b *Builder) error {
		if _, ok := unitDurations[u]; !ok {
			return errors.Wrapf(errdefs.ErrInvalidArgument, "unknown rate unit %q", string(u))
		}
		b.rateUnit = u
		return nil
	}
}

// WithDurationUnit sets the unit timers report durations in.
func WithDurationUnit(u TimeUnit) Option {
	return func(b *Builder) error {
		if _, ok := unitDurations[u]; !ok {
			return errors.Wrapf(errdefs.ErrInvalidArgument, "unknown duration unit %q", string(u))
		}
		b.durationUnit = u
		return nil
	}
}

// WithTickInterval sets how often moving averages advance.
func WithTickInterval(d time.Duration) Option {
	return func(b *Builder) error {
		if d <= 0 {
			return errors.Wrapf(errdefs.ErrInvalidArgument, "tick interval must be positive, got %s", d)
		}
		b.tickInterval = d
		return nil
	}
}

// NewBuilder applies opts over the defaults: exponentially decaying
// reservoirs, the wall clock, rates per second, durations in milliseconds
// and a five second tick.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{
		kind:         reservoir.DefaultKind,
		clock:        clock.NewClock(),
		logger:       logrus.StandardLogger(),
		rateUnit:     Seconds,
		durationUnit: Milliseconds,
		tickInterval: TickInterval,
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	b.scheduler = NewScheduler(b.clock, b.tickInterval, b.logger)
	return b, nil
}

// Scheduler returns the scheduler ticking this builder's meters and timers.
// It is not started.
func (b *Builder) Scheduler() *Scheduler { return b.scheduler }

// Kind returns the reservoir kind used for histograms and timers.
func (b *Builder) Kind() reservoir.Kind { return b.kind }

// Reservoir creates a reservoir of the configured kind.
func (b *Builder) Reservoir() reservoir.Reservoir {
	opts := append([]reservoir.Option{
		reservoir.WithClock(b.clock),
		reservoir.WithLogger(b.logger),
	}, b.reservoirOpts...)

	// the kind was validated when the builder was created
	r, err := reservoir.New(b.kind, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func (b *Builder) Counter() *Counter {
	return NewCounter()
}

func (b *Builder) Meter() *Meter {
	m := NewMeter(b.clock, b.rateUnit, b.tickInterval)
	b.scheduler.Add(m)
	return m
}

func (b *Builder) Histogram() *Histogram {
	return NewHistogram(b.Reservoir())
}

func (b *Builder) Timer() *Timer {
	t := NewTimer(b.Reservoir(), b.clock, b.rateUnit, b.durationUnit, b.tickInterval)
	b.scheduler.Add(t)
	return t
}
