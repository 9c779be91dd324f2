package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/cases"
)

// checksum is the content fingerprint stored with artifacts and semantic entries.
func checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// tokenize splits text on whitespace and case-folds each token.
func tokenize(text string) map[string]struct{} {
	fold := cases.Fold()
	fields := strings.Fields(text)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[fold.String(f)] = struct{}{}
	}
	return set
}

// queryWords splits a query on whitespace and case-folds each word,
// dropping duplicates.
func queryWords(query string) []string {
	fold := cases.Fold()
	var words []string
	seen := make(map[string]struct{})
	for _, f := range strings.Fields(query) {
		w := fold.String(f)
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	return words
}

// foldedContent returns the case-folded content, cached by checksum.
func (s *Store) foldedContent(sum, content string) string {
	if folded, ok := s.folded.Get(sum); ok {
		return folded
	}
	folded := cases.Fold().String(content)
	s.folded.Add(sum, folded)
	return folded
}

// containsAny reports whether content contains any of words.
func containsAny(content string, words []string) bool {
	for _, w := range words {
		if strings.Contains(content, w) {
			return true
		}
	}
	return false
}

// contentTokens tokenizes stored content, caching by checksum since the
// same artifact is scanned by every relevance query.
func (s *Store) contentTokens(sum, content string) map[string]struct{} {
	if set, ok := s.tokens.Get(sum); ok {
		return set
	}
	set := tokenize(content)
	s.tokens.Add(sum, set)
	return set
}

// overlap counts tokens present in both sets.
func overlap(query, content map[string]struct{}) int {
	small, large := query, content
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			n++
		}
	}
	return n
}
