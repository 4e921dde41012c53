package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorSchemes(t *testing.T) {
	for name, scheme := range map[string]*ColorScheme{
		"default": DefaultColorScheme(),
		"none":    NoColorScheme(),
		"forced":  ForcedColorScheme(),
	} {
		t.Run(name, func(t *testing.T) {
			for _, c := range scheme.all() {
				assert.NotNil(t, c)
			}
		})
	}

	assert.Equal(t, "plain", NoColorScheme().Highlight.Sprint("plain"))
	assert.True(t, strings.HasPrefix(ForcedColorScheme().Highlight.Sprint("bold"), "\x1b["))
}

func TestIcons(t *testing.T) {
	assert.Equal(t, "✓", SuccessIcon(true))
	assert.Equal(t, "✗", ErrorIcon(true))
	assert.Contains(t, SuccessIcon(false), "✓")
	assert.Contains(t, ErrorIcon(false), "✗")
}

func TestSchemeFor_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))
	assert.Equal(t, "x", SchemeFor(&buf, false).Heading.Sprint("x"))
	assert.Equal(t, "x", SchemeFor(&buf, true).Heading.Sprint("x"))
}
