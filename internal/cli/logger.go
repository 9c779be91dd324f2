package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/fsutil"
	"github.com/mrz1836/forge/internal/logging"
)

// logFileWriter holds the log file writer so CloseLogFile can release it.
var logFileWriter io.WriteCloser //nolint:gochecknoglobals // Needed for cleanup

// zerologConfigOnce ensures zerolog global settings are configured exactly once.
var zerologConfigOnce sync.Once //nolint:gochecknoglobals // One-time configuration

// zerologGlobalMu protects concurrent writes to the zerolog global logger.
var zerologGlobalMu sync.Mutex //nolint:gochecknoglobals // Protects zerolog global

// configureZerologGlobals sets the field names used in every log entry.
func configureZerologGlobals() {
	zerologConfigOnce.Do(func() {
		zerolog.TimestampFieldName = "ts"
		zerolog.MessageFieldName = "event"
	})
}

// InitLogger creates the CLI logger.
//
// Log levels are set as follows:
//   - verbose=true: Debug level
//   - quiet=true: Warn level
//   - default: Info level
//
// Console output is a human-readable writer on a TTY without NO_COLOR and
// JSON on stderr otherwise. Entries are also written, redacted, to
// ~/.forge/logs/forge.log with rotation. If the log file cannot be
// created the logger continues with console-only output.
func InitLogger(verbose, quiet bool) zerolog.Logger {
	configureZerologGlobals()

	writer := selectOutput()
	if fileWriter, err := createLogFileWriter(); err == nil {
		logFileWriter = fileWriter
		writer = zerolog.MultiLevelWriter(writer, fileWriter)
	}

	logger := buildLogger(selectLevel(verbose, quiet), writer)
	setGlobalLogger(logger)
	return logger
}

// InitLoggerWithWriter creates a logger that writes only to w.
// This is primarily intended for testing purposes.
func InitLoggerWithWriter(verbose, quiet bool, w io.Writer) zerolog.Logger {
	configureZerologGlobals()
	logger := buildLogger(selectLevel(verbose, quiet), w)
	setGlobalLogger(logger)
	return logger
}

func buildLogger(level zerolog.Level, w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(level).Hook(logging.SecretHook{}).With().Timestamp().Logger()
}

// setGlobalLogger points the zerolog/log package at the CLI logger so
// library code using log.Debug() and friends shares its configuration.
func setGlobalLogger(cliLogger zerolog.Logger) {
	zerologGlobalMu.Lock()
	defer zerologGlobalMu.Unlock()
	log.Logger = cliLogger
}

// CloseLogFile closes the global log file writer if it was opened.
func CloseLogFile() {
	if logFileWriter != nil {
		_ = logFileWriter.Close()
		logFileWriter = nil
	}
}

// selectLevel determines the appropriate log level based on flags.
func selectLevel(verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// selectOutput determines the console writer from terminal capabilities.
func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}
	return os.Stderr
}

// redactingWriteCloser redacts writes before they reach the rotating file.
type redactingWriteCloser struct {
	*logging.RedactingWriter
	closer io.Closer
}

func (w *redactingWriteCloser) Close() error {
	return w.closer.Close()
}

// createLogFileWriter creates the rotating, redacting writer for the CLI log.
func createLogFileWriter() (io.WriteCloser, error) {
	logPath, err := LogFilePath()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(logPath), fsutil.DirPerm); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   constants.LogCompress,
	}
	return &redactingWriteCloser{
		RedactingWriter: logging.NewRedactingWriter(lj),
		closer:          lj,
	}, nil
}

// forgeHome returns FORGE_HOME when set and ~/.forge otherwise.
func forgeHome() (string, error) {
	if home := os.Getenv("FORGE_HOME"); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, constants.ForgeHome), nil
}

// LogFilePath returns the path to the global CLI log file.
func LogFilePath() (string, error) {
	home, err := forgeHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.LogsDir, constants.CLILogFileName), nil
}
