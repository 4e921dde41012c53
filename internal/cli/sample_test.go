package cli

import (
	"encoding/json"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/reservoir/internal/output"
)

func sampleJSON(t *testing.T, stdin string, args ...string) output.SnapshotReport {
	t.Helper()
	out, _, err := execute(t, stdin, append([]string{"sample", "--json"}, args...)...)
	require.NoError(t, err)

	var report output.SnapshotReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	return report
}

func TestSample_Lines(t *testing.T) {
	input := "# latencies\n10\n\n20,checkout\n 30 , search \n4.6\n"
	report := sampleJSON(t, input, "--type", "uniform")

	assert.Equal(t, "uniform", report.Reservoir)
	assert.Equal(t, int64(4), report.Count)
	assert.Equal(t, 4, report.Size)
	assert.Equal(t, int64(5), report.Min)
	assert.Equal(t, int64(30), report.Max)
	assert.Equal(t, "search", report.MaxLabel)
	assert.InDelta(t, 16.25, report.Mean, 1e-9)
}

func TestSample_File(t *testing.T) {
	path := writeFile(t, "values.txt", "1\n2\n3\n4\n")
	report := sampleJSON(t, "", path, "--type", "sliding-window", "--size", "2")

	assert.Equal(t, "sliding-window", report.Reservoir)
	assert.Equal(t, int64(4), report.Count)
	assert.Equal(t, 2, report.Size)
	assert.Equal(t, int64(3), report.Min)
	assert.Equal(t, int64(4), report.Max)
}

func TestSample_MissingFile(t *testing.T) {
	_, _, err := execute(t, "", "sample", "does-not-exist.txt")
	assert.True(t, errdefs.IsNotFound(err))
}

func TestSample_InvalidLine(t *testing.T) {
	_, _, err := execute(t, "1\nfast\n", "sample")
	require.Error(t, err)
	assert.True(t, errdefs.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "line 2")
}

func TestSample_JSONPath(t *testing.T) {
	doc := `{"requests": [
		{"id": "a", "latency": 12},
		{"id": "b", "latency": 250},
		{"id": "c", "latency": 7}
	]}`
	report := sampleJSON(t, doc, "--type", "hdr",
		"--json-path", "$.requests[*].latency",
		"--label-path", "$.requests[*].id")

	assert.Equal(t, "hdr-histogram", report.Reservoir)
	assert.Equal(t, int64(3), report.Count)
	assert.Equal(t, int64(7), report.Min)
	assert.Equal(t, "c", report.MinLabel)
	assert.Equal(t, int64(250), report.Max)
	assert.Equal(t, "b", report.MaxLabel)
}

func TestSample_JSONPathErrors(t *testing.T) {
	doc := `{"values": [1, 2], "names": ["x"]}`

	_, _, err := execute(t, doc, "sample", "--json-path", "$.values", "--label-path", "$.names")
	assert.True(t, errdefs.IsInvalidArgument(err))

	_, _, err = execute(t, doc, "sample", "--json-path", "$.missing")
	assert.True(t, errdefs.IsNotFound(err))

	_, _, err = execute(t, doc, "sample", "--label-path", "$.names")
	assert.True(t, errdefs.IsInvalidArgument(err))
}

func TestSample_Config(t *testing.T) {
	path := writeFile(t, "config.yaml", "reservoir:\n  type: sliding-window\n  size: 3\n")
	report := sampleJSON(t, "1\n2\n3\n4\n5\n", "--config", path)

	assert.Equal(t, "sliding-window", report.Reservoir)
	assert.Equal(t, 3, report.Size)
	assert.Equal(t, int64(3), report.Min)
}

func TestSample_FlagsOverrideConfig(t *testing.T) {
	path := writeFile(t, "config.yaml", "reservoir:\n  type: sliding-window\n  size: 3\n")
	report := sampleJSON(t, "1\n2\n3\n4\n5\n", "--config", path, "--type", "uniform", "--size", "10")

	assert.Equal(t, "uniform", report.Reservoir)
	assert.Equal(t, 5, report.Size)
}

func TestSample_InvalidConfig(t *testing.T) {
	_, _, err := execute(t, "1\n", "sample", "--type", "reservoir-of-dogs")
	assert.True(t, errdefs.IsInvalidArgument(err))
}

func TestSample_DefaultsAreLogged(t *testing.T) {
	_, stderr, err := execute(t, "1\n", "sample", "--log-level", "info")
	require.NoError(t, err)
	assert.Contains(t, stderr, "applied configuration defaults")
}

func TestSample_Text(t *testing.T) {
	out, _, err := execute(t, "5,first\n9,last\n", "sample", "--type", "uniform")
	require.NoError(t, err)

	assert.Contains(t, out, "reservoir uniform")
	assert.Contains(t, out, "[first]")
	assert.Contains(t, out, "[last]")
	assert.Contains(t, out, "p99.9")
}

func TestSample_YAML(t *testing.T) {
	out, _, err := execute(t, "1\n2\n", "sample", "--format", "yaml", "--type", "uniform")
	require.NoError(t, err)

	var report output.SnapshotReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, int64(2), report.Count)
}

func TestRoundValue(t *testing.T) {
	v, err := roundValue(2.5)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	v, err = roundValue(-1.4)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), v)

	_, err = parseValue("NaN")
	assert.True(t, errdefs.IsInvalidArgument(err))
	_, err = parseValue("1e300")
	assert.True(t, errdefs.IsInvalidArgument(err))
}
