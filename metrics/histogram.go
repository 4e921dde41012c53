package metrics

import (
	"go.uber.org/atomic"

	"github.com/wesleyorama2/reservoir/internal/atomicx"
	"github.com/wesleyorama2/reservoir/reservoir"
)

// Histogram measures the distribution of values through a reservoir. It
// also keeps the last value seen and the running sum of all values.
type Histogram struct {
	reservoir reservoir.Reservoir
	last      atomic.Pointer[reservoir.Sample]
	sum       *atomicx.StripedInt64
}

// HistogramValue is the exported state of a Histogram.
//
// Count is the number of updates; SampleSize is the number of values the
// statistics were computed from.
type HistogramValue struct {
	Count         int64   `json:"count"`
	SampleSize    int     `json:"sampleSize"`
	Sum           float64 `json:"sum"`
	LastValue     float64 `json:"lastValue"`
	LastUserValue string  `json:"lastUserValue,omitempty"`
	Min           float64 `json:"min"`
	MinUserValue  string  `json:"minUserValue,omitempty"`
	Max           float64 `json:"max"`
	MaxUserValue  string  `json:"maxUserValue,omitempty"`
	Mean          float64 `json:"mean"`
	StdDev        float64 `json:"stdDev"`
	Median        float64 `json:"median"`
	Percentile75  float64 `json:"p75"`
	Percentile95  float64 `json:"p95"`
	Percentile98  float64 `json:"p98"`
	Percentile99  float64 `json:"p99"`
	Percentile999 float64 `json:"p999"`
}

// NewHistogram creates a histogram sampling into r.
func NewHistogram(r reservoir.Reservoir) *Histogram {
	return &Histogram{reservoir: r, sum: atomicx.NewStripedInt64()}
}

// Update records value with an optional label ("" for none).
func (h *Histogram) Update(value int64, label string) {
	h.reservoir.Update(value, label)
	h.last.Store(&reservoir.Sample{Value: value, Label: label})
	h.sum.Add(value)
}

// Reservoir returns the reservoir the histogram samples into.
func (h *Histogram) Reservoir() reservoir.Reservoir { return h.reservoir }

// Snapshot returns a snapshot of the reservoir without resetting it.
func (h *Histogram) Snapshot() reservoir.Snapshot { return h.reservoir.GetSnapshot(false) }

// GetValue returns the statistics of the current samples.
func (h *Histogram) GetValue(reset bool) HistogramValue {
	var sum int64
	if reset {
		sum = h.sum.SumThenReset()
	} else {
		sum = h.sum.Sum()
	}
	last := h.last.Load()
	if reset {
		h.last.Store(nil)
	}

	v := valueOf(h.reservoir.GetSnapshot(reset))
	v.Sum = float64(sum)
	if last != nil {
		v.LastValue = float64(last.Value)
		v.LastUserValue = last.Label
	}
	return v
}

func valueOf(s reservoir.Snapshot) HistogramValue {
	return HistogramValue{
		Count:         s.Count(),
		SampleSize:    s.Size(),
		Min:           float64(s.Min()),
		MinUserValue:  s.MinLabel(),
		Max:           float64(s.Max()),
		MaxUserValue:  s.MaxLabel(),
		Mean:          s.Mean(),
		StdDev:        s.StdDev(),
		Median:        s.Median(),
		Percentile75:  s.Percentile75(),
		Percentile95:  s.Percentile95(),
		Percentile98:  s.Percentile98(),
		Percentile99:  s.Percentile99(),
		Percentile999: s.Percentile999(),
	}
}

// Scale returns a copy with every value-bearing field multiplied by factor.
func (v HistogramValue) Scale(factor float64) HistogramValue {
	v.Sum *= factor
	v.LastValue *= factor
	v.Min *= factor
	v.Max *= factor
	v.Mean *= factor
	v.StdDev *= factor
	v.Median *= factor
	v.Percentile75 *= factor
	v.Percentile95 *= factor
	v.Percentile98 *= factor
	v.Percentile99 *= factor
	v.Percentile999 *= factor
	return v
}

// Reset clears the reservoir, the sum and the last value.
func (h *Histogram) Reset() {
	h.reservoir.Reset()
	h.sum.Reset()
	h.last.Store(nil)
}
