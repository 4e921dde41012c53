package reservoir

import (
	"encoding/binary"
	"math"

	iradix "github.com/hashicorp/go-immutable-radix/v2"
	"go.uber.org/atomic"
)

// priorityMap is a concurrent map from priority to sample, ordered by
// priority. It holds an immutable radix tree behind an atomic pointer:
// readers load the current tree, writers derive a new tree and publish it
// with compare-and-swap, retrying when another writer won.
//
// Priorities are positive, so the big-endian IEEE 754 bits of a priority
// sort the same way as the priority itself.
type priorityMap struct {
	tree atomic.Pointer[iradix.Tree[WeightedSample]]
}

func newPriorityMap() *priorityMap {
	m := &priorityMap{}
	m.tree.Store(iradix.New[WeightedSample]())
	return m
}

func priorityKey(p float64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], math.Float64bits(p))
	return k[:]
}

func keyPriority(k []byte) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(k))
}

// put stores s under p, replacing any sample already there.
func (m *priorityMap) put(p float64, s WeightedSample) {
	k := priorityKey(p)
	for {
		t := m.tree.Load()
		next, _, _ := t.Insert(k, s)
		if m.tree.CompareAndSwap(t, next) {
			return
		}
	}
}

// putIfAbsent stores s under p unless p is taken. It reports whether s was
// stored.
func (m *priorityMap) putIfAbsent(p float64, s WeightedSample) bool {
	k := priorityKey(p)
	for {
		t := m.tree.Load()
		if _, ok := t.Get(k); ok {
			return false
		}
		next, _, _ := t.Insert(k, s)
		if m.tree.CompareAndSwap(t, next) {
			return true
		}
	}
}

// remove deletes p. It reports false when p was not present, for instance
// because a concurrent writer removed it first.
func (m *priorityMap) remove(p float64) bool {
	k := priorityKey(p)
	for {
		t := m.tree.Load()
		next, _, ok := t.Delete(k)
		if !ok {
			return false
		}
		if m.tree.CompareAndSwap(t, next) {
			return true
		}
	}
}

// first returns the lowest priority.
func (m *priorityMap) first() (float64, bool) {
	k, _, ok := m.tree.Load().Root().Minimum()
	if !ok {
		return 0, false
	}
	return keyPriority(k), true
}

func (m *priorityMap) len() int {
	return m.tree.Load().Len()
}

type priorityEntry struct {
	priority float64
	sample   WeightedSample
}

// entries returns a consistent view of the map in ascending priority order.
func (m *priorityMap) entries() []priorityEntry {
	t := m.tree.Load()
	entries := make([]priorityEntry, 0, t.Len())
	t.Root().Walk(func(k []byte, v WeightedSample) bool {
		entries = append(entries, priorityEntry{priority: keyPriority(k), sample: v})
		return false
	})
	return entries
}

// replace publishes a tree built from entries, discarding the current one.
// Callers must exclude concurrent writers.
func (m *priorityMap) replace(entries []priorityEntry) {
	txn := iradix.New[WeightedSample]().Txn()
	for _, e := range entries {
		txn.Insert(priorityKey(e.priority), e.sample)
	}
	m.tree.Store(txn.Commit())
}

func (m *priorityMap) clear() {
	m.tree.Store(iradix.New[WeightedSample]())
}
