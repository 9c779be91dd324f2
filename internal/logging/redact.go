// Package logging keeps secrets out of log output. Prompts and generated
// code routinely carry configuration snippets, so everything forge writes to
// its log file passes through Redact.
package logging

import (
	"io"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
)

// Redacted replaces every secret found in log output.
const Redacted = "[REDACTED]"

//nolint:gochecknoglobals // compiled once
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9_-]{8,}`),
	regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._~+/-]{20,}=*`),
	regexp.MustCompile(`(?i)(api[_-]?key|access[_-]?token|auth[_-]?token|secret|password|passwd)\s*[:=]\s*["']?[^\s"']{8,}["']?`),
	regexp.MustCompile(`-----BEGIN[A-Z ]*PRIVATE KEY-----`),
}

//nolint:gochecknoglobals // fixed vocabulary
var secretKeys = []string{
	"api_key", "apikey", "token", "secret", "password", "passwd", "credential", "private_key", "authorization",
}

// ContainsSecret reports whether s matches any secret pattern.
func ContainsSecret(s string) bool {
	for _, p := range secretPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// Redact replaces every secret in s.
func Redact(s string) string {
	for _, p := range secretPatterns {
		s = p.ReplaceAllString(s, Redacted)
	}
	return s
}

// IsSecretKey reports whether a field or environment variable name holds a secret.
func IsSecretKey(name string) bool {
	lower := strings.ToLower(name)
	for _, k := range secretKeys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// SafeValue redacts value entirely when name is a secret key and
// pattern-redacts it otherwise.
func SafeValue(name, value string) string {
	if IsSecretKey(name) {
		return Redacted
	}
	return Redact(value)
}

// Preview redacts s, folds it to one line, and truncates it to width
// terminal cells. Used to log prompts and generated content at debug level.
func Preview(s string, width int) string {
	line := strings.Join(strings.Fields(Redact(s)), " ")
	if width <= 0 {
		return line
	}
	return runewidth.Truncate(line, width, "…")
}

// SecretHook marks events whose message contains a secret. zerolog hooks
// cannot rewrite the message, so RedactingWriter does the actual redaction.
type SecretHook struct{}

// Run implements zerolog.Hook.
func (SecretHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSecret(msg) {
		e.Bool("redacted", true)
	}
}

// RedactingWriter redacts everything written through it.
type RedactingWriter struct {
	w io.Writer
}

// NewRedactingWriter wraps w.
func NewRedactingWriter(w io.Writer) *RedactingWriter {
	return &RedactingWriter{w: w}
}

// Write implements io.Writer. It reports len(p) on success so callers never
// see a short write when redaction changes the length.
func (rw *RedactingWriter) Write(p []byte) (int, error) {
	if _, err := rw.w.Write([]byte(Redact(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
