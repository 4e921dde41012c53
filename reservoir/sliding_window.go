package reservoir

import (
	"github.com/wesleyorama2/reservoir/internal/atomicx"
)

// SlidingWindow keeps the last size observations in a ring buffer.
type SlidingWindow struct {
	size  int
	count atomicx.Int64
	slots []slot
}

var _ Reservoir = (*SlidingWindow)(nil)

// NewSlidingWindow creates a sliding window reservoir. Honors WithSize.
func NewSlidingWindow(opts ...Option) *SlidingWindow {
	o := applyOptions(opts)
	return &SlidingWindow{
		size:  o.size,
		slots: make([]slot, o.size),
	}
}

// Update overwrites the oldest slot.
func (r *SlidingWindow) Update(value int64, label string) {
	c := r.count.Increment()
	r.slots[(c-1)%int64(r.size)].set(value, label)
}

// GetSnapshot copies the live slots in ring order; the snapshot sorts them.
// Resetting only zeroes the counter, like Uniform.
func (r *SlidingWindow) GetSnapshot(reset bool) Snapshot {
	count := takeCount(&r.count, reset)
	samples := copySlots(r.slots, minSize(count, r.size))
	return NewUniformSnapshot(count, samples)
}

func (r *SlidingWindow) Reset() {
	for i := range r.slots {
		r.slots[i].clear()
	}
	r.count.Store(0)
}

func (r *SlidingWindow) Count() int64 { return r.count.Load() }

func (r *SlidingWindow) Size() int { return minSize(r.count.Load(), r.size) }
