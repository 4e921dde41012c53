package reservoir

import (
	"github.com/wesleyorama2/reservoir/internal/atomicx"
)

// Uniform is a random sample of the whole stream using Vitter's algorithm R:
// after n updates every one of them is in the sample with probability
// size/n.
type Uniform struct {
	size   int
	random Random
	count  atomicx.Int64
	slots  []slot
}

var _ Reservoir = (*Uniform)(nil)

// NewUniform creates a uniform reservoir. Honors WithSize and WithRandom.
func NewUniform(opts ...Option) *Uniform {
	o := applyOptions(opts)
	return &Uniform{
		size:   o.size,
		random: o.random,
		slots:  make([]slot, o.size),
	}
}

// Update admits the value with probability size/count. Concurrent writers
// may land on the same slot, in which case the last write wins.
func (r *Uniform) Update(value int64, label string) {
	c := r.count.Increment()
	if c <= int64(r.size) {
		r.slots[c-1].set(value, label)
		return
	}

	if idx := r.random.Int64N(c); idx < int64(r.size) {
		r.slots[idx].set(value, label)
	}
}

// GetSnapshot copies the live slots. Resetting only zeroes the counter: the
// stale slots are overwritten from index 0 by the next updates and are never
// read before that.
func (r *Uniform) GetSnapshot(reset bool) Snapshot {
	count := takeCount(&r.count, reset)
	samples := copySlots(r.slots, minSize(count, r.size))
	return NewUniformSnapshot(count, samples)
}

func (r *Uniform) Reset() {
	r.count.Store(0)
	for i := range r.slots {
		r.slots[i].clear()
	}
}

func (r *Uniform) Count() int64 { return r.count.Load() }

func (r *Uniform) Size() int { return minSize(r.count.Load(), r.size) }
