package reservoir

import (
	"go.uber.org/atomic"
)

// Sample is a single admitted observation with its optional label.
type Sample struct {
	Value int64  `json:"value"`
	Label string `json:"label,omitempty"`
}

// WeightedSample is a Sample held by the exponentially decaying reservoir
// together with its forward-decay weight.
type WeightedSample struct {
	Sample
	Weight float64 `json:"weight"`
}

// slot holds one sample of an array-backed reservoir. Value and label are
// written independently, so a reader racing two writers may pair a value
// with the other writer's label. Both reservoirs using slots accept that.
type slot struct {
	value atomic.Int64
	label atomic.String
}

func (s *slot) set(value int64, label string) {
	s.value.Store(value)
	s.label.Store(label)
}

func (s *slot) get() Sample {
	return Sample{Value: s.value.Load(), Label: s.label.Load()}
}

func (s *slot) clear() {
	s.value.Store(0)
	s.label.Store("")
}

func copySlots(slots []slot, n int) []Sample {
	samples := make([]Sample, n)
	for i := range samples {
		samples[i] = slots[i].get()
	}
	return samples
}
