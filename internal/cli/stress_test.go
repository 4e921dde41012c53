package cli

import (
	"encoding/json"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/reservoir/internal/output"
	"github.com/wesleyorama2/reservoir/reservoir"
)

func TestStress_AllReservoirs(t *testing.T) {
	for _, kind := range reservoir.Kinds {
		t.Run(kind.String(), func(t *testing.T) {
			out, _, err := execute(t, "", "stress", "--json", "--type", kind.String(),
				"--goroutines", "4", "--updates", "2000", "--snapshots", "10")
			require.NoError(t, err)

			var report output.StressReport
			require.NoError(t, json.Unmarshal([]byte(out), &report))
			assert.True(t, report.Passed(), report.Violations)
			assert.Equal(t, int64(8000), report.Count)
		})
	}
}

func TestStress_Text(t *testing.T) {
	out, _, err := execute(t, "", "stress", "--type", "sliding-window", "--size", "64",
		"--goroutines", "2", "--updates", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ passed")
	assert.Contains(t, out, "size 64/64")
}

func TestStress_InvalidArguments(t *testing.T) {
	_, _, err := execute(t, "", "stress", "--goroutines", "0")
	assert.True(t, errdefs.IsInvalidArgument(err))
}

// lossy drops every other update.
type lossy struct {
	reservoir.Reservoir
	n int
}

func (l *lossy) Update(value int64, label string) {
	l.n++
	if l.n%2 == 0 {
		l.Reservoir.Update(value, label)
	}
}

func TestCheck_ReportsLostUpdates(t *testing.T) {
	r, err := reservoir.New(reservoir.KindSlidingWindow, reservoir.WithSize(1000))
	require.NoError(t, err)
	l := &lossy{Reservoir: r}

	stress(l, 1, 100, 0)
	report := check(l, reservoir.KindSlidingWindow, 1000, 1, 100)

	assert.False(t, report.Passed())
	assert.Contains(t, report.Violations, "count is 50, want 100")
	assert.Contains(t, report.Violations, "size is 50, want 100")

	err = stressError(report)
	require.Error(t, err)
	assert.Equal(t, "stress run failed with 2 violation(s)", err.Error())
	assert.NoError(t, stressError(output.StressReport{}))
}
