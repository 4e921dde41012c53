package atomicx

import (
	"math/bits"
	"math/rand/v2"
	"runtime"
)

const maxStripes = 64

// StripedInt64 is a sum spread over several padded cells. Writers pick a
// cell at random so that concurrent increments rarely contend on the same
// cache line; readers add the cells up.
//
// Sum is not an atomic snapshot: increments racing with Sum may or may not
// be included.
type StripedInt64 struct {
	noCopy noCopy
	cells  []Int64
	mask   uint32
}

// NewStripedInt64 returns a StripedInt64 sized for the current GOMAXPROCS.
func NewStripedInt64() *StripedInt64 {
	n := runtime.GOMAXPROCS(0)
	if n > maxStripes {
		n = maxStripes
	}
	// round up to a power of two so the cell index is a mask
	size := 1 << bits.Len(uint(n-1))
	if size < 1 {
		size = 1
	}
	return &StripedInt64{
		cells: make([]Int64, size),
		mask:  uint32(size - 1),
	}
}

func (s *StripedInt64) cell() *Int64 {
	return &s.cells[rand.Uint32()&s.mask]
}

// Add adds n.
func (s *StripedInt64) Add(n int64) { s.cell().Add(n) }

// Increment adds one.
func (s *StripedInt64) Increment() { s.cell().Increment() }

// Decrement subtracts one.
func (s *StripedInt64) Decrement() { s.cell().Decrement() }

// Sum returns the current total.
func (s *StripedInt64) Sum() int64 {
	var sum int64
	for i := range s.cells {
		sum += s.cells[i].Load()
	}
	return sum
}

// SumThenReset returns the current total and zeroes every cell. Each cell is
// swapped individually, so no increment is lost or counted twice.
func (s *StripedInt64) SumThenReset() int64 {
	var sum int64
	for i := range s.cells {
		sum += s.cells[i].Swap(0)
	}
	return sum
}

// Reset zeroes every cell.
func (s *StripedInt64) Reset() {
	for i := range s.cells {
		s.cells[i].Store(0)
	}
}
