package reservoir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlidingWindow_KeepsMostRecent(t *testing.T) {
	const size, extra = 100, 37
	r := NewSlidingWindow(WithSize(size))

	for v := int64(1); v <= size+extra; v++ {
		r.Update(v, "")
	}

	want := make([]int64, 0, size)
	for v := int64(extra + 1); v <= size+extra; v++ {
		want = append(want, v)
	}

	snap := r.GetSnapshot(false)
	assert.ElementsMatch(t, want, snap.Values())
	assert.Equal(t, int64(size+extra), snap.Count())
	assert.Equal(t, size, snap.Size())
}

func TestSlidingWindow_PartialFill(t *testing.T) {
	r := NewSlidingWindow(WithSize(8))
	r.Update(3, "c")
	r.Update(1, "a")
	r.Update(2, "b")

	snap := r.GetSnapshot(false)
	assert.Equal(t, []int64{1, 2, 3}, snap.Values())
	assert.Equal(t, "a", snap.MinLabel())
	assert.Equal(t, "c", snap.MaxLabel())
}

func TestSlidingWindow_ResetClearsSlots(t *testing.T) {
	r := NewSlidingWindow(WithSize(3))
	for v := int64(1); v <= 5; v++ {
		r.Update(v, "")
	}
	r.Reset()

	assert.Zero(t, r.Count())
	assert.Empty(t, r.GetSnapshot(false).Values())
}
