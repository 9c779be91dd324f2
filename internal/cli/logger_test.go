package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/logging"
)

func TestSelectLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		verbose bool
		quiet   bool
		want    zerolog.Level
	}{
		{"default", false, false, zerolog.InfoLevel},
		{"verbose", true, false, zerolog.DebugLevel},
		{"quiet", false, true, zerolog.WarnLevel},
		{"verbose wins", true, true, zerolog.DebugLevel},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, selectLevel(tc.verbose, tc.quiet))
		})
	}
}

func TestInitLoggerWithWriter_EntryFields(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLoggerWithWriter(false, false, &buf)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger.Info().Str("task_id", "task_0001").Msg("task completed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "task completed", entry["event"])
	assert.Equal(t, "task_0001", entry["task_id"])
	assert.Contains(t, entry, "ts")
	assert.NotContains(t, entry, "redacted")
}

func TestInitLoggerWithWriter_FlagsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLoggerWithWriter(true, false, &buf)

	logger.Debug().Msg("calling generator with api_key=abcdef123456")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, true, entry["redacted"])
}

func TestSelectOutput_NonTTY(t *testing.T) {
	// Tests never run with a terminal on stderr.
	assert.Equal(t, os.Stderr, selectOutput())
}

func TestLogFilePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("FORGE_HOME", home)

	path, err := LogFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, constants.LogsDir, constants.CLILogFileName), path)
}

func TestForgeHome_DefaultsToUserHome(t *testing.T) {
	t.Setenv("FORGE_HOME", "")

	home, err := forgeHome()
	require.NoError(t, err)
	assert.Equal(t, constants.ForgeHome, filepath.Base(home))
}

func TestCreateLogFileWriter_RedactsSecrets(t *testing.T) {
	home := t.TempDir()
	t.Setenv("FORGE_HOME", home)

	w, err := createLogFileWriter()
	require.NoError(t, err)

	line := `{"event":"request","auth":"Bearer abcdefghijklmnopqrstuvwxyz0123"}` + "\n"
	n, err := w.Write([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, len(line), n)
	require.NoError(t, w.Close())

	path, err := LogFilePath()
	require.NoError(t, err)
	data, err := os.ReadFile(path) //#nosec G304 -- test path
	require.NoError(t, err)
	assert.Contains(t, string(data), logging.Redacted)
	assert.NotContains(t, string(data), "abcdefghijklmnopqrstuvwxyz0123")
}

func TestCreateLogFileWriter_FailsOnInvalidPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	t.Setenv("FORGE_HOME", blocker)

	_, err := createLogFileWriter()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "log directory"))
}

func TestInitLogger_WritesToFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("FORGE_HOME", home)
	t.Cleanup(CloseLogFile)

	logger := InitLogger(false, true)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
	logger.Warn().Msg("snapshot save failed")
	CloseLogFile()

	data, err := os.ReadFile(filepath.Join(home, constants.LogsDir, constants.CLILogFileName)) //#nosec G304 -- test path
	require.NoError(t, err)
	assert.Contains(t, string(data), "snapshot save failed")
}

func TestCloseLogFile_NoOpWhenNil(_ *testing.T) {
	CloseLogFile()
	CloseLogFile()
}
