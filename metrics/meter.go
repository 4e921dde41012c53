package metrics

import (
	"slices"
	"strings"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"

	"github.com/wesleyorama2/reservoir/internal/atomicx"
)

// Meter measures the rate of events: the mean rate since creation or the
// last reset, and one, five and fifteen minute moving averages. Events can
// be attributed to items, each of which gets its own rates.
type Meter struct {
	clock    clock.Clock
	rateUnit TimeUnit
	interval time.Duration

	total *rates
	items sync.Map // string -> *rates

	start atomicx.Int64 // unix nanos
}

// MeterValue is the exported state of a Meter. Rates are per RateUnit.
type MeterValue struct {
	Count             int64       `json:"count"`
	MeanRate          float64     `json:"meanRate"`
	OneMinuteRate     float64     `json:"oneMinuteRate"`
	FiveMinuteRate    float64     `json:"fiveMinuteRate"`
	FifteenMinuteRate float64     `json:"fifteenMinuteRate"`
	RateUnit          TimeUnit    `json:"rateUnit"`
	Items             []MeterItem `json:"items,omitempty"`
}

// MeterItem holds the rates of one item and its share of all events.
type MeterItem struct {
	Item    string     `json:"item"`
	Percent float64    `json:"percent"`
	Value   MeterValue `json:"value"`
}

type rates struct {
	count *atomicx.StripedInt64
	m1    *EWMA
	m5    *EWMA
	m15   *EWMA
}

func newRates(interval time.Duration) *rates {
	return &rates{
		count: atomicx.NewStripedInt64(),
		m1:    NewOneMinuteEWMA(interval),
		m5:    NewFiveMinuteEWMA(interval),
		m15:   NewFifteenMinuteEWMA(interval),
	}
}

func (r *rates) mark(n int64) {
	r.count.Add(n)
	r.m1.Update(n)
	r.m5.Update(n)
	r.m15.Update(n)
}

func (r *rates) tick() {
	r.m1.Tick()
	r.m5.Tick()
	r.m15.Tick()
}

func (r *rates) reset() {
	r.count.Reset()
	r.m1.Reset()
	r.m5.Reset()
	r.m15.Reset()
}

func (r *rates) value(elapsed time.Duration, unit TimeUnit) MeterValue {
	count := r.count.Sum()
	var mean float64
	if elapsed > 0 {
		mean = unit.PerUnit(float64(count) / elapsed.Seconds())
	}
	return MeterValue{
		Count:             count,
		MeanRate:          mean,
		OneMinuteRate:     r.m1.Rate(unit),
		FiveMinuteRate:    r.m5.Rate(unit),
		FifteenMinuteRate: r.m15.Rate(unit),
		RateUnit:          unit,
	}
}

// NewMeter creates a meter whose moving averages advance every interval.
// A zero interval means TickInterval.
func NewMeter(clk clock.Clock, rateUnit TimeUnit, interval time.Duration) *Meter {
	if clk == nil {
		clk = clock.NewClock()
	}
	if rateUnit == "" {
		rateUnit = Seconds
	}
	if interval <= 0 {
		interval = TickInterval
	}
	m := &Meter{
		clock:    clk,
		rateUnit: rateUnit,
		interval: interval,
		total:    newRates(interval),
	}
	m.start.Store(clk.Now().UnixNano())
	return m
}

func (m *Meter) Mark()         { m.total.mark(1) }
func (m *Meter) MarkN(n int64) { m.total.mark(n) }

// MarkItem records n events attributed to item.
func (m *Meter) MarkItem(item string, n int64) {
	m.total.mark(n)
	m.item(item).mark(n)
}

func (m *Meter) item(name string) *rates {
	if v, ok := m.items.Load(name); ok {
		return v.(*rates)
	}
	v, _ := m.items.LoadOrStore(name, newRates(m.interval))
	return v.(*rates)
}

// Tick advances every moving average by one interval.
func (m *Meter) Tick() {
	m.total.tick()
	m.items.Range(func(_, v any) bool {
		v.(*rates).tick()
		return true
	})
}

// Count returns the number of events since creation or the last reset.
func (m *Meter) Count() int64 { return m.total.count.Sum() }

// GetValue returns the current rates. With reset the meter starts over
// once the value has been taken.
func (m *Meter) GetValue(reset bool) MeterValue {
	elapsed := m.clock.Now().Sub(time.Unix(0, m.start.Load()))
	value := m.total.value(elapsed, m.rateUnit)

	m.items.Range(func(k, v any) bool {
		iv := v.(*rates).value(elapsed, m.rateUnit)
		value.Items = append(value.Items, MeterItem{
			Item:    k.(string),
			Percent: percent(iv.Count, value.Count),
			Value:   iv,
		})
		return true
	})
	slices.SortFunc(value.Items, func(a, b MeterItem) int { return strings.Compare(a.Item, b.Item) })

	if reset {
		m.Reset()
	}
	return value
}

// Reset zeroes the count and rates, forgets items and restarts the clock
// for the mean rate.
func (m *Meter) Reset() {
	m.start.Store(m.clock.Now().UnixNano())
	m.total.reset()
	m.items.Clear()
}
