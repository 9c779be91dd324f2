package tui

import (
	"os"
	"testing"
)

// unsetEnv removes key for the rest of the test; t.Setenv restores it.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s: %v", key, err)
	}
}
