package reservoir

import (
	"math"
	"sync"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/wesleyorama2/reservoir/internal/atomicx"
)

// HdrHistogram is a reservoir backed by an HDR histogram. It is loss-less
// within the configured number of significant digits and keeps every
// observation since the last reset.
//
// Writers record into the current interval of a lock-free recorder.
// GetSnapshot swaps the interval out and merges it into a running total
// under mergeMu; that lock is never taken on the write path.
//
// The exact minimum and maximum are tracked next to the histogram together
// with their labels. The numeric extremes are always exact; a label may
// briefly belong to a value that was overtaken between the compare-and-swap
// and the label assignment.
type HdrHistogram struct {
	layout            bucketLayout
	significantDigits int
	logger            logrus.FieldLogger

	recorder *intervalRecorder
	count    atomicx.Int64
	clamped  atomic.Bool

	mergeMu  sync.Mutex
	totals   *hdrhistogram.Histogram
	excess   float64 // guarded by mergeMu, see interval
	excessSq float64

	min      atomicx.Int64
	minMu    sync.Mutex
	minLabel string

	max      atomicx.Int64
	maxMu    sync.Mutex
	maxLabel string
}

var _ Reservoir = (*HdrHistogram)(nil)

// NewHdrHistogram creates an HDR reservoir. Honors WithSignificantDigits,
// WithHighestTrackableValue and WithLogger.
func NewHdrHistogram(opts ...Option) *HdrHistogram {
	o := applyOptions(opts)
	layout := newBucketLayout(o.significantDigits, o.highestTrackableValue)
	r := &HdrHistogram{
		layout:            layout,
		significantDigits: o.significantDigits,
		logger:            o.logger,
		recorder:          newIntervalRecorder(layout),
		totals:            hdrhistogram.New(1, o.highestTrackableValue, o.significantDigits),
	}
	r.min.Store(math.MaxInt64)
	r.max.Store(math.MinInt64)
	return r
}

// Update records the value. Values outside [0, highest trackable] are
// bucketed at the nearest bound but still reported exactly as min or max,
// and they contribute their exact value to Mean and StdDev.
func (r *HdrHistogram) Update(value int64, label string) {
	if r.layout.clamp(value) != value && r.clamped.CompareAndSwap(false, true) {
		r.logger.WithFields(logrus.Fields{
			"value":   value,
			"highest": r.layout.highest,
		}).Debug("hdr reservoir clamped a value outside its trackable range")
	}

	// the extremes are published before the value becomes visible to a
	// snapshot, so a merged value is always within them
	r.count.Increment()
	if value > r.max.Load() {
		r.setMax(value, label)
	}
	if value < r.min.Load() {
		r.setMin(value, label)
	}
	r.recorder.record(value)
}

func (r *HdrHistogram) setMax(value int64, label string) {
	current := r.max.Load()
	for value > current {
		if r.max.CompareAndSwap(current, value) {
			current = value
			break
		}
		current = r.max.Load()
	}
	if value != current {
		return
	}

	r.maxMu.Lock()
	if r.max.Load() == value {
		r.maxLabel = label
	}
	r.maxMu.Unlock()
}

func (r *HdrHistogram) setMin(value int64, label string) {
	current := r.min.Load()
	for value < current {
		if r.min.CompareAndSwap(current, value) {
			current = value
			break
		}
		current = r.min.Load()
	}
	if value != current {
		return
	}

	r.minMu.Lock()
	if r.min.Load() == value {
		r.minLabel = label
	}
	r.minMu.Unlock()
}

// extremes returns the current min and max with their labels. When clear is
// set they are put back to their empty state in the same critical section.
func (r *HdrHistogram) extremes(clear bool) (minValue int64, minLabel string, maxValue int64, maxLabel string) {
	r.minMu.Lock()
	minLabel = r.minLabel
	if clear {
		minValue = r.min.Swap(math.MaxInt64)
		r.minLabel = ""
	} else {
		minValue = r.min.Load()
	}
	r.minMu.Unlock()

	r.maxMu.Lock()
	maxLabel = r.maxLabel
	if clear {
		maxValue = r.max.Swap(math.MinInt64)
		r.maxLabel = ""
	} else {
		maxValue = r.max.Load()
	}
	r.maxMu.Unlock()
	return minValue, minLabel, maxValue, maxLabel
}

// GetSnapshot merges the values recorded since the previous call into the
// running totals and returns a view over them.
//
// With reset the snapshot takes the totals over and the reservoir starts
// again from an empty histogram. Writers are never interrupted: a value
// recorded while the snapshot is taken lands in the next one.
func (r *HdrHistogram) GetSnapshot(reset bool) Snapshot {
	r.mergeMu.Lock()
	defer r.mergeMu.Unlock()

	r.mergeInterval()
	minValue, minLabel, maxValue, maxLabel := r.extremes(reset)

	if !reset {
		copied := r.newHistogram()
		copied.Merge(r.totals)
		return newHdrSnapshot(copied, r.excess, r.excessSq, minValue, minLabel, maxValue, maxLabel)
	}

	taken := r.totals
	snap := newHdrSnapshot(taken, r.excess, r.excessSq, minValue, minLabel, maxValue, maxLabel)
	r.totals = r.newHistogram()
	r.excess, r.excessSq = 0, 0
	r.count.Add(-taken.TotalCount())
	r.clamped.Store(false)
	return snap
}

func (r *HdrHistogram) newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(1, r.layout.highest, r.significantDigits)
}

func (r *HdrHistogram) mergeInterval() {
	filled := r.recorder.swap()
	filled.drain(r.layout, r.totals)
	r.excess += filled.excess.Load()
	r.excessSq += filled.excessSq.Load()
}

// Reset discards everything, including values being recorded concurrently.
func (r *HdrHistogram) Reset() {
	r.mergeMu.Lock()
	defer r.mergeMu.Unlock()

	r.extremes(true)
	r.recorder.swap()
	r.totals.Reset()
	r.excess, r.excessSq = 0, 0
	r.count.Store(0)
	r.clamped.Store(false)
}

func (r *HdrHistogram) Count() int64 { return r.count.Load() }

// Size equals Count, capped at math.MaxInt32: the histogram holds every
// observation.
func (r *HdrHistogram) Size() int {
	return minSize(r.count.Load(), math.MaxInt32)
}
