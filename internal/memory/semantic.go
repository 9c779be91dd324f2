package memory

import (
	"slices"
	"sort"

	"github.com/mrz1836/forge/internal/domain"
)

// AddSemanticContext files content under key and indexes key by each tag.
func (s *Store) AddSemanticContext(key, content string, tags []string) {
	entry := domain.SemanticEntry{
		Content: content,
		Hash:    checksum(content),
		Tags:    slices.Clone(tags),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry.Timestamp = s.now()
	if _, seen := s.semantic[key]; !seen {
		s.semanticKeys = append(s.semanticKeys, key)
	}
	s.semantic[key] = append(s.semantic[key], entry)

	for _, tag := range tags {
		if !slices.Contains(s.tagIndex[tag], key) {
			s.tagIndex[tag] = append(s.tagIndex[tag], key)
		}
	}
}

// SemanticContext scores every entry by how many query tokens its content
// shares and returns up to limit matches, best first. Entries with no
// overlap are omitted; ties keep insertion order.
func (s *Store) SemanticContext(query string, limit int) []domain.SemanticMatch {
	q := tokenize(query)
	if len(q) == 0 || limit <= 0 {
		return nil
	}

	s.mu.RLock()
	var matches []domain.SemanticMatch
	for _, key := range s.semanticKeys {
		for _, entry := range s.semantic[key] {
			score := overlap(q, s.contentTokens(entry.Hash, entry.Content))
			if score == 0 {
				continue
			}
			matches = append(matches, domain.SemanticMatch{Key: key, Entry: entry, Score: score})
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// KeysByTag returns the keys indexed under tag in insertion order.
func (s *Store) KeysByTag(tag string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tagIndex[tag])
}
