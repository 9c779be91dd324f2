package memory

import (
	"slices"

	"github.com/mrz1836/forge/internal/domain"
)

// UpdateProjectState stores value under key with the current time.
// value should be JSON-serializable; it is persisted as-is.
func (s *Store) UpdateProjectState(key string, value any) {
	s.mu.Lock()
	s.projectState[key] = domain.ProjectStateEntry{Value: value, LastUpdated: s.now()}
	s.touch()
	s.mu.Unlock()
}

// ProjectState returns the entry stored under key.
func (s *Store) ProjectState(key string) (domain.ProjectStateEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.projectState[key]
	return e, ok
}

// AddLearning remembers a solution tried for a scenario and whether it worked.
func (s *Store) AddLearning(scenario, solution string, success bool) {
	s.mu.Lock()
	s.learning[scenario] = append(s.learning[scenario], domain.LearningRecord{
		Solution:  solution,
		Success:   success,
		Timestamp: s.now(),
	})
	s.touch()
	s.mu.Unlock()
}

// Learnings returns the records for a scenario, oldest first.
func (s *Store) Learnings(scenario string) []domain.LearningRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.learning[scenario])
}
