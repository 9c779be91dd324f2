package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
)

func TestFormatEvent(t *testing.T) {
	e := domain.ProgressEvent{
		CurrentTask:        "Backend Development",
		ProgressPercentage: 37,
		Status:             constants.ProgressGenerating,
		Details:            "Generating backend code",
	}
	assert.Equal(t, "[ 37%] ⟳ Backend Development: Generating backend code", FormatEvent(e, 0))

	short := FormatEvent(e, 20)
	assert.LessOrEqual(t, runewidth.StringWidth(short), 20)
	assert.True(t, strings.HasSuffix(short, "…"))

	e.Details = ""
	assert.Equal(t, "[ 37%] ⟳ Backend Development", FormatEvent(e, 80))
}

func TestProgressBar_Render(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	bar := NewProgressBar(20)
	assert.Contains(t, bar.Render(0.5), "50%")
	assert.Contains(t, bar.Render(7), "100%")
	assert.Contains(t, bar.Render(-1), "0%")
}

func TestProgressPrinter_Observe(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	p := NewProgressPrinter(&buf, 80)

	require.NoError(t, p.Observe(domain.ProgressEvent{CurrentTask: "Testing", ProgressPercentage: 50, Status: constants.ProgressStarting}))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))

	require.NoError(t, p.Observe(domain.ProgressEvent{CurrentTask: "Testing", ProgressPercentage: 75, Status: constants.ProgressCompleted}))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "✓ Testing")
	assert.Contains(t, lines[2], "75%")
}
