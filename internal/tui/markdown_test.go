package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	out := RenderMarkdown("## Summary\n\nThe todo app is ready.", 60)
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "The todo app is ready.")
	assert.NotContains(t, out, "\x1b[")
}

func TestConfirm_NonInteractive(t *testing.T) {
	orig := IsInteractive
	IsInteractive = func() bool { return false }
	t.Cleanup(func() { IsInteractive = orig })

	ok, err := Confirm("Clear memory?", "This cannot be undone.")
	require.Error(t, err)
	assert.False(t, ok)
}
