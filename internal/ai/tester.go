package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go/parser"
	"go/scanner"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/forge/internal/ctxutil"
	"github.com/mrz1836/forge/internal/domain"
)

// StructuralTester checks that generated files are well formed: Go files
// parse, JSON and YAML decode, markup has balanced angle brackets, and
// everything else has balanced brackets outside strings and comments. It
// does not run the code.
type StructuralTester struct {
	logger zerolog.Logger
}

// NewStructuralTester creates a tester.
func NewStructuralTester(logger zerolog.Logger) *StructuralTester {
	return &StructuralTester{logger: logger}
}

// Test implements Tester.
func (t *StructuralTester) Test(ctx context.Context, content, path string) (*domain.TestResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	var diagnostics []string
	if strings.TrimSpace(content) == "" {
		diagnostics = []string{"file is empty"}
	} else {
		diagnostics = check(content, path)
	}

	result := &domain.TestResult{Success: len(diagnostics) == 0, Diagnostics: diagnostics}
	t.logger.Debug().
		Str("path", path).
		Bool("success", result.Success).
		Int("diagnostics", len(diagnostics)).
		Msg("structural check finished")
	return result, nil
}

func check(content, path string) []string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".go":
		return checkGo(content, path)
	case ".json":
		return checkJSON(content)
	case ".yaml", ".yml":
		return checkYAML(content)
	case ".html", ".htm", ".xml", ".svg":
		return checkMarkup(content)
	case ".py", ".sh", ".rb", ".toml":
		return checkBrackets(content, "#")
	default:
		return checkBrackets(content, "//")
	}
}

func checkGo(content, path string) []string {
	_, err := parser.ParseFile(token.NewFileSet(), path, content, parser.AllErrors)
	if err == nil {
		return nil
	}
	var list scanner.ErrorList
	if errors.As(err, &list) {
		out := make([]string, 0, len(list))
		for _, e := range list {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

func checkJSON(content string) []string {
	var v any
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return []string{fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}

func checkYAML(content string) []string {
	var v any
	if err := yaml.Unmarshal([]byte(content), &v); err != nil {
		return []string{fmt.Sprintf("invalid YAML: %v", err)}
	}
	return nil
}

func checkMarkup(content string) []string {
	depth := 0
	for i, r := range content {
		switch r {
		case '<':
			depth++
			if depth > 1 {
				return []string{fmt.Sprintf("nested '<' at offset %d", i)}
			}
		case '>':
			depth--
			if depth < 0 {
				return []string{fmt.Sprintf("unexpected '>' at offset %d", i)}
			}
		}
	}
	if depth != 0 {
		return []string{"unterminated tag at end of file"}
	}
	return nil
}

// checkBrackets verifies (), [] and {} pair up, skipping quoted strings and
// line comments that start with comment.
func checkBrackets(content, comment string) []string {
	pairs := map[rune]rune{')': '(', ']': '[', '}': '{'}
	var stack []rune
	var quote rune
	escaped := false
	line := 1

	runes := []rune(content)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			line++
		}

		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}

		if strings.HasPrefix(string(runes[i:min(i+len(comment), len(runes))]), comment) {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			line++
			continue
		}

		switch r {
		case '"', '\'', '`':
			quote = r
		case '(', '[', '{':
			stack = append(stack, r)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[r] {
				return []string{fmt.Sprintf("line %d: unmatched %q", line, r)}
			}
			stack = stack[:len(stack)-1]
		}
	}

	if quote != 0 {
		return []string{fmt.Sprintf("unterminated string starting with %q", quote)}
	}
	if len(stack) > 0 {
		return []string{fmt.Sprintf("unclosed %q at end of file", stack[len(stack)-1])}
	}
	return nil
}

var _ Tester = (*StructuralTester)(nil)
