package metrics

import (
	"slices"
	"strings"
	"sync"

	"github.com/wesleyorama2/reservoir/internal/atomicx"
)

// Counter is a signed count that can also be broken down by item, for
// example the number of requests per endpoint.
type Counter struct {
	count *atomicx.StripedInt64
	items sync.Map // string -> *atomicx.Int64
}

// CounterValue is the exported state of a Counter.
type CounterValue struct {
	Count int64         `json:"count"`
	Items []CounterItem `json:"items,omitempty"`
}

// CounterItem is the share of a Counter attributed to one item.
type CounterItem struct {
	Item    string  `json:"item"`
	Count   int64   `json:"count"`
	Percent float64 `json:"percent"`
}

func NewCounter() *Counter {
	return &Counter{count: atomicx.NewStripedInt64()}
}

func (c *Counter) Increment()       { c.count.Increment() }
func (c *Counter) Decrement()       { c.count.Decrement() }
func (c *Counter) Add(n int64)      { c.count.Add(n) }
func (c *Counter) Subtract(n int64) { c.count.Add(-n) }

// IncrementItem adds n to both the total and the named item.
func (c *Counter) IncrementItem(item string, n int64) {
	c.count.Add(n)
	c.item(item).Add(n)
}

func (c *Counter) item(name string) *atomicx.Int64 {
	if v, ok := c.items.Load(name); ok {
		return v.(*atomicx.Int64)
	}
	v, _ := c.items.LoadOrStore(name, atomicx.NewInt64(0))
	return v.(*atomicx.Int64)
}

// Count returns the current total.
func (c *Counter) Count() int64 { return c.count.Sum() }

// GetValue returns the total and the per-item breakdown, sorted by item
// name. With reset the counter is zeroed as the value is read.
func (c *Counter) GetValue(reset bool) CounterValue {
	var total int64
	if reset {
		total = c.count.SumThenReset()
	} else {
		total = c.count.Sum()
	}

	var items []CounterItem
	c.items.Range(func(k, v any) bool {
		var n int64
		if reset {
			n = v.(*atomicx.Int64).Swap(0)
		} else {
			n = v.(*atomicx.Int64).Load()
		}
		items = append(items, CounterItem{Item: k.(string), Count: n, Percent: percent(n, total)})
		return true
	})
	slices.SortFunc(items, func(a, b CounterItem) int { return strings.Compare(a.Item, b.Item) })

	return CounterValue{Count: total, Items: items}
}

// Reset zeroes the total and forgets every item.
func (c *Counter) Reset() {
	c.count.Reset()
	c.items.Clear()
}

func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
