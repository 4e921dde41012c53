package metrics

import (
	"sync"
	"time"

	"code.cloudfoundry.org/clock"

	"github.com/wesleyorama2/reservoir/internal/atomicx"
	"github.com/wesleyorama2/reservoir/reservoir"
)

// Timer combines a Histogram of durations with a Meter of calls. Durations
// are sampled in nanoseconds and reported in the timer's duration unit.
type Timer struct {
	clock        clock.Clock
	durationUnit TimeUnit
	histogram    *Histogram
	meter        *Meter

	activeSessions atomicx.Int64
	totalTime      atomicx.Int64 // nanoseconds
}

// TimerValue is the exported state of a Timer. Histogram and TotalTime are
// expressed in DurationUnit.
type TimerValue struct {
	Rate           MeterValue     `json:"rate"`
	Histogram      HistogramValue `json:"histogram"`
	ActiveSessions int64          `json:"activeSessions"`
	TotalTime      float64        `json:"totalTime"`
	DurationUnit   TimeUnit       `json:"durationUnit"`
}

// NewTimer creates a timer sampling durations into r.
func NewTimer(r reservoir.Reservoir, clk clock.Clock, rateUnit, durationUnit TimeUnit, interval time.Duration) *Timer {
	if clk == nil {
		clk = clock.NewClock()
	}
	if durationUnit == "" {
		durationUnit = Milliseconds
	}
	return &Timer{
		clock:        clk,
		durationUnit: durationUnit,
		histogram:    NewHistogram(r),
		meter:        NewMeter(clk, rateUnit, interval),
	}
}

// Record adds a measured duration. Negative durations are ignored.
func (t *Timer) Record(d time.Duration, label string) {
	if d < 0 {
		return
	}
	t.histogram.Update(int64(d), label)
	t.meter.Mark()
	t.totalTime.Add(int64(d))
}

// Time runs fn and records how long it took.
func (t *Timer) Time(fn func()) {
	ctx := t.StartRecording()
	defer ctx.Stop()
	fn()
}

// StartRecording starts measuring a session; Stop on the returned context
// records it.
func (t *Timer) StartRecording() *TimerContext {
	t.activeSessions.Increment()
	return &TimerContext{timer: t, start: t.clock.Now()}
}

// Tick advances the call rate averages.
func (t *Timer) Tick() { t.meter.Tick() }

// Count returns the number of recorded durations.
func (t *Timer) Count() int64 { return t.histogram.reservoir.Count() }

// ActiveSessions returns the number of started but not yet stopped sessions.
func (t *Timer) ActiveSessions() int64 { return t.activeSessions.Load() }

// GetValue returns the call rate and the duration distribution.
func (t *Timer) GetValue(reset bool) TimerValue {
	var total int64
	if reset {
		total = t.totalTime.Swap(0)
	} else {
		total = t.totalTime.Load()
	}
	scale := t.durationUnit.FromNanoseconds(1)
	return TimerValue{
		Rate:           t.meter.GetValue(reset),
		Histogram:      t.histogram.GetValue(reset).Scale(scale),
		ActiveSessions: t.activeSessions.Load(),
		TotalTime:      t.durationUnit.FromNanoseconds(float64(total)),
		DurationUnit:   t.durationUnit,
	}
}

// Reset clears recorded durations and rates. Sessions in flight stay
// active and are recorded when stopped.
func (t *Timer) Reset() {
	t.histogram.Reset()
	t.meter.Reset()
	t.totalTime.Store(0)
}

// TimerContext is one measured session of a Timer.
type TimerContext struct {
	timer   *Timer
	start   time.Time
	label   string
	once    sync.Once
	elapsed time.Duration
}

// SetLabel attaches a label to the duration recorded by Stop.
func (c *TimerContext) SetLabel(label string) { c.label = label }

// Elapsed returns the time since the session started.
func (c *TimerContext) Elapsed() time.Duration {
	return c.timer.clock.Since(c.start)
}

// Stop records the session and returns its duration. Only the first call
// records; later calls return the same duration.
func (c *TimerContext) Stop() time.Duration {
	c.once.Do(func() {
		c.elapsed = c.Elapsed()
		c.timer.activeSessions.Decrement()
		c.timer.Record(c.elapsed, c.label)
	})
	return c.elapsed
}
