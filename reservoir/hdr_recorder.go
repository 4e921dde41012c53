package reservoir

import (
	"math"
	"math/bits"
	"runtime"
	"sync"

	"github.com/HdrHistogram/hdrhistogram-go"
	"go.uber.org/atomic"
)

// bucketLayout is the HDR log-linear bucket layout for a lowest
// discernible value of 1: values below 2*10^digits get unit resolution,
// and every further power of two is split into the same number of
// sub-buckets. hdrhistogram.Histogram uses the same layout, so the lowest
// value of one of our buckets always falls into the matching bucket there.
type bucketLayout struct {
	halfCountMagnitude uint
	halfCount          int
	mask               int64
	highest            int64
	countsLen          int
}

func newBucketLayout(significantDigits int, highest int64) bucketLayout {
	largestSingleUnit := 2 * math.Pow10(significantDigits)
	countMagnitude := uint(math.Ceil(math.Log2(largestSingleUnit)))
	halfCountMagnitude := countMagnitude - 1
	subBucketCount := int64(1) << countMagnitude

	bucketCount := 1
	for smallestUntrackable := subBucketCount; smallestUntrackable < highest; bucketCount++ {
		if smallestUntrackable > math.MaxInt64/2 {
			bucketCount++
			break
		}
		smallestUntrackable <<= 1
	}

	halfCount := int(subBucketCount / 2)
	return bucketLayout{
		halfCountMagnitude: halfCountMagnitude,
		halfCount:          halfCount,
		mask:               subBucketCount - 1,
		highest:            highest,
		countsLen:          (bucketCount + 1) * halfCount,
	}
}

// clamp forces v into the trackable range.
func (l bucketLayout) clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	if v > l.highest {
		return l.highest
	}
	return v
}

// index maps a trackable value to its counts slot.
func (l bucketLayout) index(v int64) int {
	bucket := bits.Len64(uint64(v|l.mask)) - int(l.halfCountMagnitude+1)
	sub := int(v >> uint(bucket))
	return (bucket+1)<<l.halfCountMagnitude + sub - l.halfCount
}

// lowestValue maps a counts slot back to the lowest value it holds.
func (l bucketLayout) lowestValue(idx int) int64 {
	bucket := idx>>l.halfCountMagnitude - 1
	sub := idx&(l.halfCount-1) + l.halfCount
	if bucket < 0 {
		sub -= l.halfCount
		bucket = 0
	}
	return int64(sub) << uint(bucket)
}

// interval is one recording interval: a count per bucket, incremented
// atomically by writers.
// Values clamped into the trackable range add their distance to the bucketed
// value to excess and excessSq, so the exact sum and sum of squares can be
// restored from the histogram.
type interval struct {
	counts   []atomic.Int64
	excess   atomic.Float64
	excessSq atomic.Float64
}

func newInterval(l bucketLayout) *interval {
	return &interval{counts: make([]atomic.Int64, l.countsLen)}
}

func (iv *interval) reset() {
	for i := range iv.counts {
		iv.counts[i].Store(0)
	}
	iv.excess.Store(0)
	iv.excessSq.Store(0)
}

// drain records every non-empty bucket into h and reports the number of
// values moved.
func (iv *interval) drain(l bucketLayout, h *hdrhistogram.Histogram) int64 {
	var total int64
	for i := range iv.counts {
		n := iv.counts[i].Load()
		if n == 0 {
			continue
		}
		// values are clamped to the histogram range, so this cannot fail
		_ = h.RecordValues(l.lowestValue(i), n)
		total += n
	}
	return total
}

// phaser coordinates lock-free writers with a reader that wants to flip
// the active interval. Writers bracket each record with writerEnter and
// writerExit; flipPhase returns only once every writer that entered before
// the flip has exited. The sign of startEpoch identifies the phase.
type phaser struct {
	startEpoch   atomic.Int64
	evenEndEpoch atomic.Int64
	oddEndEpoch  atomic.Int64
	readerMu     sync.Mutex
}

func newPhaser() *phaser {
	p := &phaser{}
	p.oddEndEpoch.Store(math.MinInt64)
	return p
}

func (p *phaser) writerEnter() int64 {
	return p.startEpoch.Inc() - 1
}

func (p *phaser) writerExit(enter int64) {
	if enter < 0 {
		p.oddEndEpoch.Inc()
	} else {
		p.evenEndEpoch.Inc()
	}
}

// flipPhase must be called with readerMu held.
func (p *phaser) flipPhase() {
	nextPhaseIsEven := p.startEpoch.Load() < 0

	var initialStart int64
	if nextPhaseIsEven {
		initialStart = 0
		p.evenEndEpoch.Store(initialStart)
	} else {
		initialStart = math.MinInt64
		p.oddEndEpoch.Store(initialStart)
	}

	startAtFlip := p.startEpoch.Swap(initialStart)

	for {
		var caughtUp bool
		if nextPhaseIsEven {
			caughtUp = p.oddEndEpoch.Load() == startAtFlip
		} else {
			caughtUp = p.evenEndEpoch.Load() == startAtFlip
		}
		if caughtUp {
			return
		}
		runtime.Gosched()
	}
}

// intervalRecorder records values without locks into the active interval
// and hands completed intervals to a single reader at a time.
type intervalRecorder struct {
	layout   bucketLayout
	phaser   *phaser
	active   atomic.Pointer[interval]
	inactive *interval // guarded by phaser.readerMu
}

func newIntervalRecorder(l bucketLayout) *intervalRecorder {
	r := &intervalRecorder{
		layout:   l,
		phaser:   newPhaser(),
		inactive: newInterval(l),
	}
	r.active.Store(newInterval(l))
	return r
}

// record counts value, clamped to the trackable range.
func (r *intervalRecorder) record(value int64) {
	v := r.layout.clamp(value)
	enter := r.phaser.writerEnter()
	iv := r.active.Load()
	iv.counts[r.layout.index(v)].Inc()
	if v != value {
		x, b := float64(value), float64(v)
		iv.excess.Add(x - b)
		iv.excessSq.Add(x*x - b*b)
	}
	r.phaser.writerExit(enter)
}

// swap makes a fresh interval active and returns the one that was filled
// since the previous swap. The returned interval stays valid until the next
// call to swap.
func (r *intervalRecorder) swap() *interval {
	r.phaser.readerMu.Lock()
	defer r.phaser.readerMu.Unlock()

	r.inactive.reset()
	filled := r.active.Swap(r.inactive)
	r.phaser.flipPhase()
	r.inactive = filled
	return filled
}
