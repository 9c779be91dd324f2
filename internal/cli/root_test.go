package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forge/internal/errors"
)

func TestRootCmd_Help(t *testing.T) {
	te := newTestEnv(t)

	output, err := te.execute("--help")
	require.NoError(t, err)

	for _, want := range []string{"forge", "--output", "--verbose", "--quiet", "--project", "plan", "run", "status", "memory", "fix"} {
		assert.Contains(t, output, want)
	}
}

func TestRootCmd_OutputFlag(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		expectedValue string
		expectError   bool
	}{
		{name: "text output", args: []string{"--output", "text"}, expectedValue: OutputText},
		{name: "json output", args: []string{"--output", "json"}, expectedValue: OutputJSON},
		{name: "shorthand output", args: []string{"-o", "json"}, expectedValue: OutputJSON},
		{name: "invalid output format", args: []string{"--output", "xml"}, expectError: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			te := newTestEnv(t)
			_, err := te.execute(tc.args...)

			if tc.expectError {
				require.ErrorIs(t, err, errors.ErrInvalidOutputFormat)
				assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedValue, te.flags.Output)
		})
	}
}

func TestRootCmd_VerboseQuietMutuallyExclusive(t *testing.T) {
	te := newTestEnv(t)

	_, err := te.execute("--verbose", "--quiet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verbose")
	assert.Contains(t, err.Error(), "quiet")
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestRootCmd_SilencesUsageOnError(t *testing.T) {
	te := newTestEnv(t)

	output, err := te.execute("--output", "invalid")
	require.Error(t, err)
	assert.NotContains(t, output, "Usage:")
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	te := newTestEnv(t)

	_, err := te.execute("deploy")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestVersionCommand(t *testing.T) {
	te := newTestEnv(t)

	output, err := te.execute("version")
	require.NoError(t, err)
	assert.Equal(t, "forge test (commit: none, built: unknown)\n", output)

	output, err = te.execute("version", "-o", "json")
	require.NoError(t, err)

	var v versionInfo
	require.NoError(t, json.Unmarshal([]byte(output), &v))
	assert.Equal(t, "test", v.Version)
	assert.NotEmpty(t, v.GoVersion)
	assert.Contains(t, v.Platform, "/")
}

func TestFormatVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		info     BuildInfo
		expected string
	}{
		{
			name:     "all fields set",
			info:     BuildInfo{Version: "1.0.0", Commit: "abc123", Date: "2026-01-01"},
			expected: "1.0.0 (commit: abc123, built: 2026-01-01)",
		},
		{
			name:     "empty info uses defaults",
			info:     BuildInfo{},
			expected: "dev (commit: none, built: unknown)",
		},
		{
			name:     "partial info fills defaults",
			info:     BuildInfo{Version: "2.0.0"},
			expected: "2.0.0 (commit: none, built: unknown)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, formatVersion(tc.info))
		})
	}
}
