package atomicx

import (
	"go.uber.org/atomic"
)

// Float64 is an atomic float64 padded to its own cache line.
type Float64 struct {
	noCopy noCopy
	v      atomic.Float64
	_      [cacheLineSize - 8]byte
}

// NewFloat64 returns a Float64 holding v.
func NewFloat64(v float64) *Float64 {
	f := &Float64{}
	f.v.Store(v)
	return f
}

// Add adds delta and returns the new value.
func (f *Float64) Add(delta float64) float64 { return f.v.Add(delta) }

// Load returns the current value.
func (f *Float64) Load() float64 { return f.v.Load() }

// Store sets the value.
func (f *Float64) Store(v float64) { f.v.Store(v) }

// Swap sets the value to v and returns the previous one.
func (f *Float64) Swap(v float64) float64 { return f.v.Swap(v) }

// CompareAndSwap sets the value to new if it currently equals old.
func (f *Float64) CompareAndSwap(old, new float64) bool { return f.v.CompareAndSwap(old, new) }
