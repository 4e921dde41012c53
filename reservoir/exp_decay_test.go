package reservoir

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestDecaying(t *testing.T, size int) (*ExponentiallyDecaying, *fakeclock.FakeClock, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	clk := fakeclock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	r := NewExponentiallyDecaying(
		WithSize(size),
		WithClock(clk),
		WithLogger(logger),
		WithRandom(rand.New(rand.NewPCG(7, 11))),
	)
	return r, clk, hook
}

func priorityOrder(r *ExponentiallyDecaying) []int64 {
	samples := r.WeightedSamples()
	values := make([]int64, len(samples))
	for i, s := range samples {
		values[i] = s.Value
	}
	return values
}

func TestExponentiallyDecaying_BelowCapacity(t *testing.T) {
	r, _, _ := newTestDecaying(t, 100)
	for v := int64(0); v < 50; v++ {
		r.Update(v, "")
	}

	snap := r.GetSnapshot(false)
	assert.Equal(t, int64(50), snap.Count())
	assert.Equal(t, 50, snap.Size())
	assert.Equal(t, int64(0), snap.Min())
	assert.Equal(t, int64(49), snap.Max())
}

func TestExponentiallyDecaying_Evicts(t *testing.T) {
	r, _, _ := newTestDecaying(t, 100)
	for v := int64(0); v < 1000; v++ {
		r.Update(v, "")
	}

	assert.Equal(t, int64(1000), r.Count())
	assert.Equal(t, 100, r.Size())
	assert.Equal(t, 100, r.GetSnapshot(false).Size())
}

func TestExponentiallyDecaying_FavorsRecentValues(t *testing.T) {
	r, clk, _ := newTestDecaying(t, 100)

	for i := 0; i < 1000; i++ {
		r.Update(1, "old")
	}
	clk.Increment(10 * time.Minute)
	for i := 0; i < 1000; i++ {
		r.Update(2, "new")
	}

	recent := 0
	for _, v := range r.GetSnapshot(false).Values() {
		if v == 2 {
			recent++
		}
	}
	assert.GreaterOrEqual(t, recent, 90)
}

func TestExponentiallyDecaying_RescaleKeepsSamples(t *testing.T) {
	r, clk, hook := newTestDecaying(t, 100)
	for v := int64(0); v < 60; v++ {
		r.Update(v*3, "")
	}

	before := r.GetSnapshot(false).Values()
	orderBefore := priorityOrder(r)
	require.Empty(t, hook.AllEntries())

	clk.Increment(2 * time.Hour)
	afterFirst := r.GetSnapshot(false)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "rescaled exponentially decaying reservoir", hook.LastEntry().Message)
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)

	clk.Increment(2 * time.Hour)
	afterSecond := r.GetSnapshot(false)
	assert.Len(t, hook.AllEntries(), 2)

	assert.Equal(t, before, afterFirst.Values())
	assert.Equal(t, before, afterSecond.Values())
	assert.Equal(t, orderBefore, priorityOrder(r))

	// the count is resynced to the number of stored samples
	assert.Equal(t, int64(60), r.Count())
}

func TestExponentiallyDecaying_RescaleScalesWeights(t *testing.T) {
	r, clk, _ := newTestDecaying(t, 10)
	r.Update(1, "")
	require.InDelta(t, 1.0, r.WeightedSamples()[0].Weight, 1e-12)

	clk.Increment(RescaleThreshold + 10*time.Second)
	r.Update(2, "")

	weights := map[int64]float64{}
	for _, s := range r.WeightedSamples() {
		weights[s.Value] = s.Weight
	}
	elapsed := (RescaleThreshold + 10*time.Second).Seconds()
	assert.InEpsilon(t, 1/expAlpha(elapsed), weights[1], 1e-9)
	assert.InDelta(t, 1.0, weights[2], 1e-12)
}

func TestExponentiallyDecaying_RescaleOnlyOnce(t *testing.T) {
	r, clk, hook := newTestDecaying(t, 10)
	r.Update(1, "")

	clk.Increment(RescaleThreshold)
	for i := 0; i < 5; i++ {
		r.Update(int64(i), "")
	}
	assert.Len(t, hook.AllEntries(), 1)
}

func TestExponentiallyDecaying_UpdateAt(t *testing.T) {
	r, clk, _ := newTestDecaying(t, 10)
	r.UpdateAt(5, "future", clk.Now().Add(100*time.Second))

	samples := r.WeightedSamples()
	require.Len(t, samples, 1)
	assert.InEpsilon(t, expAlpha(100), samples[0].Weight, 1e-9)
	assert.Equal(t, "future", samples[0].Label)
}

func expAlpha(seconds float64) float64 {
	return math.Exp(DefaultAlpha * seconds)
}

func TestExponentiallyDecaying_ConcurrentUpdatesAcrossRescale(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	clk := fakeclock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	const size, writers, perWriter, rescales = 100, 4, 20000, 3
	// the runtime source: a seeded *rand.Rand is not safe for concurrent use
	r := NewExponentiallyDecaying(WithSize(size), WithClock(clk), WithLogger(logger))

	var g errgroup.Group
	for w := 0; w < writers; w++ {
		g.Go(func() error {
			for i := 0; i < perWriter; i++ {
				r.Update(int64(w*perWriter+i), "")
			}
			return nil
		})
	}
	for i := 0; i < rescales; i++ {
		clk.Increment(RescaleThreshold)
		assert.LessOrEqual(t, r.GetSnapshot(false).Size(), size)
	}
	require.NoError(t, g.Wait())

	assert.Len(t, hook.AllEntries(), rescales)
	assert.Equal(t, size, r.Size())
	assert.Equal(t, size, r.GetSnapshot(false).Size())
	for _, s := range r.WeightedSamples() {
		assert.Greater(t, s.Weight, 0.0)
		assert.LessOrEqual(t, s.Weight, 1+1e-9)
	}
}
