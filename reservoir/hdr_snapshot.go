package reservoir

import (
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// HdrSnapshot is a Snapshot over a private copy of an HDR histogram.
//
// Quantiles, mean and standard deviation are resolved to the histogram's
// precision. Min and Max are the exact extremes observed. Values returns one
// entry per non-empty bucket rather than one per observation, so Size (the
// number of observations) is usually larger than len(Values()).
type HdrSnapshot struct {
	hist     *hdrhistogram.Histogram
	count    int64
	excess   float64
	excessSq float64
	min      int64
	max      int64
	minLabel string
	maxLabel string
}

var _ Snapshot = (*HdrSnapshot)(nil)

// newHdrSnapshot takes ownership of h. excess and excessSq restore the exact
// sum and sum of squares of values that were clamped before bucketing.
// Extremes still at their empty sentinel belong to values not yet published
// to the reservoir; the histogram's own bounds stand in for them.
func newHdrSnapshot(h *hdrhistogram.Histogram, excess, excessSq float64, minValue int64, minLabel string, maxValue int64, maxLabel string) *HdrSnapshot {
	s := &HdrSnapshot{hist: h, count: h.TotalCount(), excess: excess, excessSq: excessSq}
	if s.count == 0 {
		return s
	}

	s.min, s.minLabel = minValue, minLabel
	if minValue == math.MaxInt64 {
		s.min, s.minLabel = h.Min(), ""
	}
	s.max, s.maxLabel = maxValue, maxLabel
	if maxValue == math.MinInt64 {
		s.max, s.maxLabel = h.Max(), ""
	}
	if s.min > s.max {
		s.min, s.max = s.max, s.min
	}
	return s
}

func (s *HdrSnapshot) Count() int64 { return s.count }

func (s *HdrSnapshot) Size() int { return minSize(s.count, math.MaxInt32) }

func (s *HdrSnapshot) Values() []int64 {
	var values []int64
	for _, bar := range s.hist.Distribution() {
		if bar.Count == 0 {
			continue
		}
		values = append(values, s.clamp(bar.From))
	}
	return values
}

// Histogram returns a copy of the underlying histogram.
func (s *HdrSnapshot) Histogram() *hdrhistogram.Histogram {
	h := hdrhistogram.New(s.hist.LowestTrackableValue(), s.hist.HighestTrackableValue(), int(s.hist.SignificantFigures()))
	h.Merge(s.hist)
	return h
}

func (s *HdrSnapshot) GetValue(q float64) (float64, error) {
	if err := checkQuantile(q); err != nil {
		return 0, err
	}
	return s.value(q), nil
}

func (s *HdrSnapshot) value(q float64) float64 {
	if s.count == 0 {
		return 0
	}
	if q == 0 {
		return float64(s.min)
	}
	return float64(s.clamp(s.hist.ValueAtQuantile(q * 100)))
}

// clamp keeps bucket boundaries within the exact observed range.
func (s *HdrSnapshot) clamp(v int64) int64 {
	if v < s.min {
		return s.min
	}
	if v > s.max {
		return s.max
	}
	return v
}

func (s *HdrSnapshot) Min() int64       { return s.min }
func (s *HdrSnapshot) Max() int64       { return s.max }
func (s *HdrSnapshot) MinLabel() string { return s.minLabel }
func (s *HdrSnapshot) MaxLabel() string { return s.maxLabel }

func (s *HdrSnapshot) Mean() float64 {
	if s.count == 0 {
		return 0
	}
	return math.Max(float64(s.min), math.Min(float64(s.max), s.mean()))
}

func (s *HdrSnapshot) mean() float64 {
	return s.hist.Mean() + s.excess/float64(s.count)
}

// StdDev returns the sample standard deviation (n-1 denominator) of the
// bucketed values, with clamped values restored to their exact value.
func (s *HdrSnapshot) StdDev() float64 {
	if s.count <= 1 {
		return 0
	}
	n := float64(s.count)
	bucketed := s.hist.StdDev()
	if s.excess == 0 && s.excessSq == 0 {
		return bucketed * math.Sqrt(n/(n-1))
	}
	meanSq := bucketed*bucketed + s.hist.Mean()*s.hist.Mean() + s.excessSq/n
	mean := s.mean()
	variance := meanSq - mean*mean
	if variance <= 0 {
		return 0
	}
	return math.Sqrt(variance * n / (n - 1))
}

func (s *HdrSnapshot) Median() float64        { return s.value(0.5) }
func (s *HdrSnapshot) Percentile75() float64  { return s.value(0.75) }
func (s *HdrSnapshot) Percentile95() float64  { return s.value(0.95) }
func (s *HdrSnapshot) Percentile98() float64  { return s.value(0.98) }
func (s *HdrSnapshot) Percentile99() float64  { return s.value(0.99) }
func (s *HdrSnapshot) Percentile999() float64 { return s.value(0.999) }
