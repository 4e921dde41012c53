package reservoir

import (
	"math/rand/v2"
)

// Random is the source of randomness used for admission decisions.
//
// *rand.Rand from math/rand/v2 satisfies it, which is handy for
// deterministic tests, but it is not safe for concurrent use.
type Random interface {
	// Int64N returns a uniformly distributed value in [0, n).
	Int64N(n int64) int64
	// Float64 returns a uniformly distributed value in [0, 1).
	Float64() float64
}

// runtimeRandom uses the math/rand/v2 top-level functions, which draw from
// per-thread generator state inside the runtime: no shared lock, no
// contention between writers.
type runtimeRandom struct{}

func (runtimeRandom) Int64N(n int64) int64 { return rand.Int64N(n) }

func (runtimeRandom) Float64() float64 { return rand.Float64() }
