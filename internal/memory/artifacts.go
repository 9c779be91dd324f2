package memory

import (
	"sort"
	"strings"

	"github.com/mrz1836/forge/internal/domain"
)

// AddCodeContext stores content as the latest version of path. Earlier
// content for the path is replaced.
func (s *Store) AddCodeContext(path, content, language string) {
	s.mu.Lock()
	s.code[path] = domain.CodeArtifact{
		Content:     content,
		Language:    language,
		Checksum:    checksum(content),
		LastUpdated: s.now(),
	}
	s.touch()
	s.mu.Unlock()

	s.logger.Debug().Str("path", path).Str("language", language).Int("bytes", len(content)).Msg("code context updated")
}

// Artifact returns the stored artifact for path.
func (s *Store) Artifact(path string) (domain.CodeArtifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.code[path]
	return a, ok
}

// Artifacts returns a copy of every stored artifact keyed by path.
func (s *Store) Artifacts() map[string]domain.CodeArtifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.CodeArtifact, len(s.code))
	for k, v := range s.code {
		out[k] = v
	}
	return out
}

// ArtifactPaths returns stored paths in sorted order.
func (s *Store) ArtifactPaths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pathsLocked()
}

func (s *Store) pathsLocked() []string {
	paths := make([]string, 0, len(s.code))
	for p := range s.code {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// MatchingArtifacts returns, in path order, the artifacts whose content
// contains at least one whitespace-separated query word, ignoring case. A
// word may appear inside a longer one: "todo" matches "TodoItem".
func (s *Store) MatchingArtifacts(query string) []string {
	words := queryWords(query)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matchingLocked(words)
}

func (s *Store) matchingLocked(words []string) []string {
	if len(words) == 0 {
		return nil
	}
	var out []string
	for _, path := range s.pathsLocked() {
		a := s.code[path]
		if containsAny(s.foldedContent(a.Checksum, a.Content), words) {
			out = append(out, path)
		}
	}
	return out
}

// RelevantContext builds the prompt context for a query: every matching
// artifact as "File: <path>\n<content>", followed by the last maxEntries
// conversation entries under "Recent conversations:". Sections are joined
// by a blank line.
func (s *Store) RelevantContext(query string, maxEntries int) string {
	words := queryWords(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var parts []string
	for _, path := range s.matchingLocked(words) {
		parts = append(parts, "File: "+path+"\n"+s.code[path].Content)
	}

	if recent := s.recentLocked(maxEntries); len(recent) > 0 {
		lines := make([]string, 0, len(recent)+1)
		lines = append(lines, "Recent conversations:")
		for _, e := range recent {
			lines = append(lines, e.Role+": "+e.Content)
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}

	return strings.Join(parts, "\n\n")
}
