// Package reservoir provides bounded, concurrently updatable summaries of
// unbounded streams of int64 observations, and the immutable snapshots used
// to query them.
//
// Four interchangeable strategies implement the Reservoir interface:
//
//   - Uniform: Vitter's algorithm R. Every observation seen so far has the
//     same probability of being in the sample.
//   - SlidingWindow: the most recent N observations.
//   - ExponentiallyDecaying: forward-decay weighted sampling that favours
//     recent observations (Cormode et al.).
//   - HdrHistogram: bucketed, loss-less within the configured precision, with
//     a lock-free interval recorder on the write path.
//
// # Basic Usage
//
//	r := reservoir.NewExponentiallyDecaying(
//	    reservoir.WithSize(1028),
//	    reservoir.WithAlpha(0.015),
//	)
//
//	// Hot path: never fails, never blocks on other writers
//	r.Update(42, "")
//	r.Update(1200, "GET /users/7")
//
//	// Reporter
//	snap := r.GetSnapshot(false)
//	fmt.Printf("p99: %.0f max: %d (%s)\n", snap.Percentile99(), snap.Max(), snap.MaxLabel())
//
// # Choosing a Reservoir
//
// The kind is picked once, when the owning metric is built:
//
//	r, err := reservoir.New(reservoir.KindHdrHistogram, reservoir.WithSignificantDigits(3))
//
// # Thread Safety
//
// Update, GetSnapshot, Reset, Count and Size may be called from any number of
// goroutines. Uniform and SlidingWindow use no locks at all; concurrent
// writers may overwrite each other's slot, which is an accepted
// approximation. ExponentiallyDecaying lets updates run in parallel and only
// excludes them while a rescale is in progress. HdrHistogram records without
// locks and only serializes snapshot merging.
//
// Snapshots copy what they need and are never mutated afterwards, so they
// can be handed to other goroutines freely.
package reservoir
