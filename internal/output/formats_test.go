package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/reservoir/reservoir"
)

func testReport() SnapshotReport {
	snap := reservoir.NewUniformSnapshot(7, []reservoir.Sample{
		{Value: 30}, {Value: 10, Label: "fast"}, {Value: 50, Label: "slow"}, {Value: 20}, {Value: 40},
	})
	return NewSnapshotReport(reservoir.KindUniform, snap)
}

func TestNewSnapshotReport(t *testing.T) {
	r := testReport()
	assert.Equal(t, "uniform", r.Reservoir)
	assert.Equal(t, int64(7), r.Count)
	assert.Equal(t, 5, r.Size)
	assert.Equal(t, int64(10), r.Min)
	assert.Equal(t, "fast", r.MinLabel)
	assert.Equal(t, int64(50), r.Max)
	assert.Equal(t, "slow", r.MaxLabel)
	assert.Equal(t, 30.0, r.Median)
}

func TestFormatter_SnapshotText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatText, nil).WriteSnapshot(&buf, testReport()))

	out := buf.String()
	assert.Contains(t, out, "reservoir uniform\n")
	assert.Regexp(t, `count\s+7\n`, out)
	assert.Regexp(t, `min\s+10 \[fast\]\n`, out)
	assert.Regexp(t, `max\s+50 \[slow\]\n`, out)
	assert.Regexp(t, `median\s+30\n`, out)
	assert.Regexp(t, `stddev\s+15\.811\n`, out)
}

func TestFormatter_SnapshotJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON, nil).WriteSnapshot(&buf, testReport()))

	var decoded SnapshotReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, testReport(), decoded)
}

func TestFormatter_SnapshotYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML, nil).WriteSnapshot(&buf, testReport()))

	var decoded SnapshotReport
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, testReport(), decoded)
}

func TestFormatter_Stress(t *testing.T) {
	report := StressReport{
		Reservoir: "sliding-window", Goroutines: 4, Updates: 100,
		Count: 400, Size: 64, Capacity: 64, Elapsed: "3ms",
	}

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatText, nil).WriteStress(&buf, report))
	assert.Contains(t, buf.String(), "✓ passed")
	assert.Contains(t, buf.String(), "4 x 100 updates in 3ms")

	report.Violations = []string{"count 399, want 400"}
	buf.Reset()
	require.NoError(t, NewFormatter(FormatText, nil).WriteStress(&buf, report))
	assert.Contains(t, buf.String(), "✗ failed")
	assert.Contains(t, buf.String(), "✗ count 399, want 400")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.True(t, errdefs.IsInvalidArgument(err))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "30", formatFloat(30))
	assert.Equal(t, "15.811", formatFloat(15.8113883))
	assert.Equal(t, "0.5", formatFloat(0.5))
}
