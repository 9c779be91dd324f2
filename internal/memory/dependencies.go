package memory

import "sort"

// TrackCodeDependency records that path depends on each of deps. Edges
// accumulate; nothing is removed.
func (s *Store) TrackCodeDependency(path string, deps []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.dependencies[path]
	if !ok {
		set = make(map[string]struct{}, len(deps))
		s.dependencies[path] = set
	}
	for _, d := range deps {
		if d != path {
			set[d] = struct{}{}
		}
	}
}

// RelatedFiles returns, sorted, the paths path depends on together with the
// paths that depend on it.
func (s *Store) RelatedFiles(path string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	related := make(map[string]struct{})
	for d := range s.dependencies[path] {
		related[d] = struct{}{}
	}
	for other, deps := range s.dependencies {
		if other == path {
			continue
		}
		if _, ok := deps[path]; ok {
			related[other] = struct{}{}
		}
	}

	out := make([]string, 0, len(related))
	for p := range related {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
