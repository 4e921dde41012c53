package atomicx

import (
	"go.uber.org/atomic"
)

const cacheLineSize = 64

// noCopy may be embedded into structs which must not be copied after the
// first use. go vet's copylocks check reports violations.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Int64 is an atomic int64 padded to its own cache line.
type Int64 struct {
	noCopy noCopy
	v      atomic.Int64
	_      [cacheLineSize - 8]byte
}

// NewInt64 returns an Int64 holding v.
func NewInt64(v int64) *Int64 {
	i := &Int64{}
	i.v.Store(v)
	return i
}

// Add adds n and returns the new value.
func (i *Int64) Add(n int64) int64 { return i.v.Add(n) }

// Increment adds one and returns the new value.
func (i *Int64) Increment() int64 { return i.v.Inc() }

// Decrement subtracts one and returns the new value.
func (i *Int64) Decrement() int64 { return i.v.Dec() }

// Load returns the current value.
func (i *Int64) Load() int64 { return i.v.Load() }

// Store sets the value.
func (i *Int64) Store(v int64) { i.v.Store(v) }

// Swap sets the value to v and returns the previous one.
func (i *Int64) Swap(v int64) int64 { return i.v.Swap(v) }

// CompareAndSwap sets the value to new if it currently equals old.
func (i *Int64) CompareAndSwap(old, new int64) bool { return i.v.CompareAndSwap(old, new) }
