package reservoir

import (
	"cmp"
	"math"
	"slices"
)

// Snapshot is an immutable point-in-time view of a reservoir.
//
// All statistics of an empty snapshot are zero.
type Snapshot interface {
	// Count is the logical number of observations the snapshot represents.
	// It may exceed Size.
	Count() int64
	// Size is the number of values held.
	Size() int
	// Values returns the held values in ascending order.
	Values() []int64
	// GetValue returns the value at quantile q. It fails with
	// ErrInvalidQuantile unless 0 <= q <= 1.
	GetValue(q float64) (float64, error)

	Min() int64
	Max() int64
	// MinLabel and MaxLabel return the label recorded with the extreme values.
	MinLabel() string
	MaxLabel() string
	Mean() float64
	StdDev() float64

	Median() float64
	Percentile75() float64
	Percentile95() float64
	Percentile98() float64
	Percentile99() float64
	Percentile999() float64
}

// UniformSnapshot is a Snapshot over a sorted list of samples.
type UniformSnapshot struct {
	count   int64
	samples []Sample
}

// NewUniformSnapshot sorts samples by value and wraps them. The snapshot
// takes ownership of the slice.
func NewUniformSnapshot(count int64, samples []Sample) *UniformSnapshot {
	slices.SortStableFunc(samples, func(a, b Sample) int {
		return cmp.Compare(a.Value, b.Value)
	})
	return &UniformSnapshot{count: count, samples: samples}
}

// NewUniformSnapshotFromValues builds a snapshot of unlabelled values.
func NewUniformSnapshotFromValues(count int64, values []int64) *UniformSnapshot {
	samples := make([]Sample, len(values))
	for i, v := range values {
		samples[i].Value = v
	}
	return NewUniformSnapshot(count, samples)
}

func (s *UniformSnapshot) Count() int64 { return s.count }

func (s *UniformSnapshot) Size() int { return len(s.samples) }

func (s *UniformSnapshot) Values() []int64 {
	values := make([]int64, len(s.samples))
	for i, sample := range s.samples {
		values[i] = sample.Value
	}
	return values
}

// Samples returns a copy of the sorted samples, labels included.
func (s *UniformSnapshot) Samples() []Sample {
	return slices.Clone(s.samples)
}

func (s *UniformSnapshot) GetValue(q float64) (float64, error) {
	if err := checkQuantile(q); err != nil {
		return 0, err
	}
	return s.value(q), nil
}

// value interpolates linearly between the two samples bracketing rank
// q*(n+1). Reported metrics depend on this exact formula.
func (s *UniformSnapshot) value(q float64) float64 {
	n := len(s.samples)
	if n == 0 {
		return 0
	}

	pos := q * float64(n+1)
	idx := int(pos)
	if idx < 1 {
		return float64(s.samples[0].Value)
	}
	if idx >= n {
		return float64(s.samples[n-1].Value)
	}

	lower := float64(s.samples[idx-1].Value)
	upper := float64(s.samples[idx].Value)
	return lower + (pos-math.Floor(pos))*(upper-lower)
}

func (s *UniformSnapshot) Min() int64 {
	if len(s.samples) == 0 {
		return 0
	}
	return s.samples[0].Value
}

func (s *UniformSnapshot) Max() int64 {
	if len(s.samples) == 0 {
		return 0
	}
	return s.samples[len(s.samples)-1].Value
}

func (s *UniformSnapshot) MinLabel() string {
	if len(s.samples) == 0 {
		return ""
	}
	return s.samples[0].Label
}

func (s *UniformSnapshot) MaxLabel() string {
	if len(s.samples) == 0 {
		return ""
	}
	return s.samples[len(s.samples)-1].Label
}

func (s *UniformSnapshot) Mean() float64 {
	if len(s.samples) == 0 {
		return 0
	}
	var sum float64
	for _, sample := range s.samples {
		sum += float64(sample.Value)
	}
	return sum / float64(len(s.samples))
}

// StdDev returns the sample standard deviation (n-1 denominator).
func (s *UniformSnapshot) StdDev() float64 {
	n := len(s.samples)
	if n <= 1 {
		return 0
	}
	mean := s.Mean()
	var sum float64
	for _, sample := range s.samples {
		d := float64(sample.Value) - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}

func (s *UniformSnapshot) Median() float64        { return s.value(0.5) }
func (s *UniformSnapshot) Percentile75() float64  { return s.value(0.75) }
func (s *UniformSnapshot) Percentile95() float64  { return s.value(0.95) }
func (s *UniformSnapshot) Percentile98() float64  { return s.value(0.98) }
func (s *UniformSnapshot) Percentile99() float64  { return s.value(0.99) }
func (s *UniformSnapshot) Percentile999() float64 { return s.value(0.999) }
