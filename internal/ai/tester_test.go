package ai

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuralTester(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		want    bool
	}{
		{"valid go", "main.go", "package main\n\nfunc main() {}\n", true},
		{"broken go", "main.go", "package main\n\nfunc main() {\n", false},
		{"valid json", "data.json", `{"a": [1, 2]}`, true},
		{"broken json", "data.json", `{"a": [1, 2}`, false},
		{"valid yaml", "app.yml", "name: todo\nitems:\n  - a\n", true},
		{"broken yaml", "app.yaml", "name: [todo\n", false},
		{"valid html", "frontend.html", "<html><body><p>hi</p></body></html>", true},
		{"unterminated tag", "frontend.html", "<html><body", false},
		{"stray close", "index.htm", "a > b", false},
		{"valid python", "main.py", "def f(x):\n    return {'a': [x]}  # ok )\n", true},
		{"python unclosed", "models.py", "class A:\n    items = [1, 2\n", false},
		{"brackets in strings", "main.py", "print(\"(\")\n", true},
		{"unterminated string", "app.js", "const s = 'abc;\n", false},
		{"js comment", "app.js", "// }\nfunction f() { return 1 }\n", true},
		{"mismatched", "app.js", "function f() { return [1 }\n", false},
		{"empty", "main.py", "  \n", false},
	}

	tester := NewStructuralTester(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tester.Test(context.Background(), tt.content, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Success, "diagnostics: %v", res.Diagnostics)
			if !tt.want {
				assert.NotEmpty(t, res.Diagnostics)
			}
		})
	}
}

func TestStructuralTester_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStructuralTester(zerolog.Nop()).Test(ctx, "x", "a.py")
	assert.ErrorIs(t, err, context.Canceled)
}
