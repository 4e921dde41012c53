package reservoir

import (
	"math"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/sirupsen/logrus"

	"github.com/wesleyorama2/reservoir/internal/atomicx"
)

// ExponentiallyDecaying is a forward-decaying priority reservoir.
//
// Each sample gets the weight exp(alpha*(t-L)), where t is the time of the
// update in seconds and L the landmark, and the priority weight/u for a
// uniform u in (0, 1]. The size samples with the highest priorities are
// kept, which statistically favours recent observations.
//
// Weights grow without bound as t moves away from L, so every
// RescaleThreshold the landmark is moved to the present and all priorities
// are scaled down accordingly.
//
// Locking: updates hold the read side of lock so that they run in parallel
// with each other, relying on priorityMap for the safety of individual map
// operations. A rescale holds the write side and therefore never overlaps
// an update.
type ExponentiallyDecaying struct {
	size   int
	alpha  float64
	clock  clock.Clock
	random Random
	logger logrus.FieldLogger

	values *priorityMap
	count  atomicx.Int64

	lock sync.RWMutex
	// startTime is the landmark in unix seconds. Written under the write
	// lock only.
	startTime int64
	// nextRescale is in unix nanoseconds. Claimed by compare-and-swap so
	// only one goroutine performs a given rescale.
	nextRescale atomicx.Int64
}

var _ Reservoir = (*ExponentiallyDecaying)(nil)

// NewExponentiallyDecaying creates a forward-decaying reservoir. Honors
// WithSize, WithAlpha, WithClock, WithRandom and WithLogger.
func NewExponentiallyDecaying(opts ...Option) *ExponentiallyDecaying {
	o := applyOptions(opts)
	r := &ExponentiallyDecaying{
		size:   o.size,
		alpha:  o.alpha,
		clock:  o.clock,
		random: o.random,
		logger: o.logger,
		values: newPriorityMap(),
	}
	now := r.clock.Now()
	r.startTime = now.Unix()
	r.nextRescale.Store(now.UnixNano() + int64(RescaleThreshold))
	return r
}

// Update records value at the current time.
func (r *ExponentiallyDecaying) Update(value int64, label string) {
	r.UpdateAt(value, label, r.clock.Now())
}

// UpdateAt records value as observed at timestamp.
func (r *ExponentiallyDecaying) UpdateAt(value int64, label string, timestamp time.Time) {
	r.rescaleIfNeeded()

	r.lock.RLock()
	defer r.lock.RUnlock()

	weight := r.weight(timestamp.Unix() - r.startTime)
	sample := WeightedSample{
		Sample: Sample{Value: value, Label: label},
		Weight: weight,
	}
	// 1-u keeps the divisor in (0, 1]
	priority := weight / (1 - r.random.Float64())

	newCount := r.count.Increment()
	if newCount <= int64(r.size) || r.values.len() == 0 {
		r.values.put(priority, sample)
		return
	}

	first, ok := r.values.first()
	if !ok || first >= priority {
		return
	}
	if r.values.putIfAbsent(priority, sample) {
		// always remove exactly one entry, even if a concurrent writer
		// already evicted the one we saw
		for !r.values.remove(first) {
			if first, ok = r.values.first(); !ok {
				return
			}
		}
	}
}

func (r *ExponentiallyDecaying) weight(elapsedSeconds int64) float64 {
	return math.Exp(r.alpha * float64(elapsedSeconds))
}

func (r *ExponentiallyDecaying) rescaleIfNeeded() {
	now := r.clock.Now().UnixNano()
	next := r.nextRescale.Load()
	if now >= next {
		r.rescale(now, next)
	}
}

// rescale runs only for the caller that claims the due time.
func (r *ExponentiallyDecaying) rescale(now, next int64) {
	if !r.nextRescale.CompareAndSwap(next, now+int64(RescaleThreshold)) {
		return
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	oldStartTime := r.startTime
	r.startTime = time.Unix(0, now).Unix()
	factor := math.Exp(-r.alpha * float64(r.startTime-oldStartTime))

	before := r.values.len()
	if factor == 0 {
		r.values.clear()
	} else {
		entries := r.values.entries()
		scaled := entries[:0]
		for _, e := range entries {
			e.sample.Weight *= factor
			if e.sample.Weight == 0 {
				continue
			}
			e.priority *= factor
			scaled = append(scaled, e)
		}
		r.values.replace(scaled)
	}

	// keep the counter in sync with the number of stored samples
	r.count.Store(int64(r.values.len()))

	r.logger.WithFields(logrus.Fields{
		"factor":   factor,
		"before":   before,
		"after":    r.values.len(),
		"landmark": r.startTime,
	}).Debug("rescaled exponentially decaying reservoir")
}

// GetSnapshot returns the held samples. Their weights are not applied:
// statistics are computed as if every retained sample counted once.
func (r *ExponentiallyDecaying) GetSnapshot(reset bool) Snapshot {
	r.rescaleIfNeeded()

	var (
		entries []priorityEntry
		count   int64
	)
	if reset {
		r.lock.Lock()
		entries, count = r.values.entries(), r.count.Load()
		r.resetLocked()
		r.lock.Unlock()
	} else {
		r.lock.RLock()
		entries, count = r.values.entries(), r.count.Load()
		r.lock.RUnlock()
	}

	// an eviction in flight may briefly leave one entry too many; drop the
	// lowest priorities
	if len(entries) > r.size {
		entries = entries[len(entries)-r.size:]
	}

	samples := make([]Sample, len(entries))
	for i, e := range entries {
		samples[i] = e.sample.Sample
	}

	return NewUniformSnapshot(count, samples)
}

// WeightedSamples returns the held samples with their current weights, in
// ascending priority order.
func (r *ExponentiallyDecaying) WeightedSamples() []WeightedSample {
	entries := r.values.entries()
	samples := make([]WeightedSample, len(entries))
	for i, e := range entries {
		samples[i] = e.sample
	}
	return samples
}

func (r *ExponentiallyDecaying) Reset() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.resetLocked()
}

func (r *ExponentiallyDecaying) resetLocked() {
	now := r.clock.Now()
	r.values.clear()
	r.count.Store(0)
	r.startTime = now.Unix()
	r.nextRescale.Store(now.UnixNano() + int64(RescaleThreshold))
}

func (r *ExponentiallyDecaying) Count() int64 { return r.count.Load() }

func (r *ExponentiallyDecaying) Size() int {
	n := r.values.len()
	if n > r.size {
		return r.size
	}
	return n
}
