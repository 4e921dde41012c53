package metrics

import (
	"math"
	"time"

	"go.uber.org/atomic"

	"github.com/wesleyorama2/reservoir/internal/atomicx"
)

// TickInterval is the default interval at which moving averages advance.
const TickInterval = 5 * time.Second

// EWMA is an exponentially weighted moving average of a per-second rate.
// Update may be called concurrently; Tick is expected to be called by a
// single goroutine every interval.
type EWMA struct {
	alpha       float64
	interval    time.Duration
	uncounted   *atomicx.StripedInt64
	rate        atomicx.Float64
	initialized atomic.Bool
}

// NewEWMA returns an average over the given window, advanced every interval.
func NewEWMA(window, interval time.Duration) *EWMA {
	if interval <= 0 {
		interval = TickInterval
	}
	return &EWMA{
		alpha:     1 - math.Exp(-interval.Seconds()/window.Seconds()),
		interval:  interval,
		uncounted: atomicx.NewStripedInt64(),
	}
}

func NewOneMinuteEWMA(interval time.Duration) *EWMA     { return NewEWMA(time.Minute, interval) }
func NewFiveMinuteEWMA(interval time.Duration) *EWMA    { return NewEWMA(5*time.Minute, interval) }
func NewFifteenMinuteEWMA(interval time.Duration) *EWMA { return NewEWMA(15*time.Minute, interval) }

// Update counts n events in the current interval.
func (e *EWMA) Update(n int64) { e.uncounted.Add(n) }

// Tick folds the events counted since the previous tick into the average.
// The first tick adopts the instant rate as is.
func (e *EWMA) Tick() {
	instant := float64(e.uncounted.SumThenReset()) / e.interval.Seconds()
	if e.initialized.CompareAndSwap(false, true) {
		e.rate.Store(instant)
		return
	}
	current := e.rate.Load()
	e.rate.Store(current + e.alpha*(instant-current))
}

// Rate returns the average rate expressed per unit.
func (e *EWMA) Rate(unit TimeUnit) float64 {
	return unit.PerUnit(e.rate.Load())
}

func (e *EWMA) Reset() {
	e.uncounted.Reset()
	e.rate.Store(0)
	e.initialized.Store(false)
}
