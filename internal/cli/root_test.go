package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the command tree with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRootCmd_Commands(t *testing.T) {
	cmd := NewRootCmd()
	assert.Equal(t, "reservoir", cmd.Use)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"sample", "stress", "validate"})

	for _, name := range []string{"log-level", "format", "json", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_Help(t *testing.T) {
	out, _, err := execute(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, "sample")
	assert.Contains(t, out, "stress")
}

func TestRootCmd_FreshFlagState(t *testing.T) {
	_, _, err := execute(t, "1\n", "sample", "--json")
	require.NoError(t, err)

	out, _, err := execute(t, "1\n", "sample", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "count", "--json must not leak into the next invocation")
}

func TestRootCmd_InvalidFlags(t *testing.T) {
	_, _, err := execute(t, "1\n", "sample", "--format", "xml")
	assert.True(t, errdefs.IsInvalidArgument(err))

	_, _, err = execute(t, "1\n", "sample", "--log-level", "loud")
	assert.Error(t, err)
}
