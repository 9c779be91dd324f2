// Package memory implements the context store: the durable memory of a
// project's conversation, generated artifacts, semantic tags, artifact
// dependencies, performance history, project state, and learned solutions.
//
// Every method is safe for concurrent use. Only conversation history, code
// context, project state, and learning memory are persisted; the indexes and
// performance logs live for the life of the process.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors,
//     internal/clock, internal/flock, internal/fsutil, std lib
//   - MUST NOT import: internal/task, internal/handler, internal/cli
package memory

import (
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/mrz1836/forge/internal/clock"
	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
)

// Config describes where a store persists and how it caches.
type Config struct {
	// Project names the snapshot. Empty selects constants.DefaultProjectName.
	Project string

	// Dir is the directory holding one sub-directory per project. Empty
	// disables persistence; Save and Load become no-ops.
	Dir string

	// TokenCacheSize bounds the tokenizer and folded-content caches. Non-positive selects the default.
	TokenCacheSize int
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for timestamps.
func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// Store is the context store for one project.
type Store struct {
	mu sync.RWMutex

	project string
	dir     string

	conversation []domain.ConversationEntry
	code         map[string]domain.CodeArtifact
	projectState map[string]domain.ProjectStateEntry
	learning     map[string][]domain.LearningRecord

	semantic     map[string][]domain.SemanticEntry
	semanticKeys []string
	tagIndex     map[string][]string

	dependencies map[string]map[string]struct{}

	performance     map[string]*domain.PerformanceRecord
	errorPatterns   []domain.PatternRecord
	successPatterns []domain.PatternRecord

	// revision counts mutations of persisted state; savedRevision is the
	// revision of the last snapshot written to disk.
	revision      uint64
	savedRevision uint64

	tokens *lru.Cache[string, map[string]struct{}]
	folded *lru.Cache[string, string]
	saves  singleflight.Group
	clock  clock.Clock
	logger zerolog.Logger
}

// New creates an empty store. Call Load to read an existing snapshot.
func New(cfg Config, logger zerolog.Logger, opts ...Option) (*Store, error) {
	size := cfg.TokenCacheSize
	if size <= 0 {
		size = constants.DefaultTokenCacheSize
	}
	cache, err := lru.New[string, map[string]struct{}](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create token cache: %w", err)
	}
	folded, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create content cache: %w", err)
	}

	project := cfg.Project
	if project == "" {
		project = constants.DefaultProjectName
	}

	s := &Store{
		project: project,
		dir:     cfg.Dir,
		tokens:  cache,
		folded:  folded,
		clock:   clock.RealClock{},
		logger:  logger.With().Str("project", project).Logger(),
	}
	s.reset()
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// reset must be called with the lock held (or before the store is shared).
func (s *Store) reset() {
	s.conversation = nil
	s.code = make(map[string]domain.CodeArtifact)
	s.projectState = make(map[string]domain.ProjectStateEntry)
	s.learning = make(map[string][]domain.LearningRecord)
	s.semantic = make(map[string][]domain.SemanticEntry)
	s.semanticKeys = nil
	s.tagIndex = make(map[string][]string)
	s.dependencies = make(map[string]map[string]struct{})
	s.performance = make(map[string]*domain.PerformanceRecord)
	s.errorPatterns = nil
	s.successPatterns = nil
}

// Project returns the project name.
func (s *Store) Project() string {
	return s.project
}

// SnapshotPath returns where the snapshot is persisted, or "" when
// persistence is disabled.
func (s *Store) SnapshotPath() string {
	if s.dir == "" {
		return ""
	}
	return filepath.Join(s.dir, s.project, constants.SnapshotFileName)
}

func (s *Store) now() time.Time {
	return s.clock.Now().UTC()
}

// touch must be called with the write lock held after changing persisted state.
func (s *Store) touch() {
	s.revision++
}

// Clear drops everything the store holds, including indexes and performance
// history. The next Save writes an empty snapshot.
func (s *Store) Clear() {
	s.mu.Lock()
	s.reset()
	s.touch()
	s.mu.Unlock()
	s.tokens.Purge()
	s.logger.Info().Msg("context memory cleared")
}

// Summary describes what the store holds.
func (s *Store) Summary() domain.ProjectSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := domain.ProjectSummary{
		Project:             s.project,
		ConversationEntries: len(s.conversation),
		Artifacts:           len(s.code),
		LearningScenarios:   len(s.learning),
		Languages:           []string{},
		ProjectStateKeys:    make([]string, 0, len(s.projectState)),
	}

	var last time.Time
	for _, a := range s.code {
		if a.Language != "" && !slices.Contains(summary.Languages, a.Language) {
			summary.Languages = append(summary.Languages, a.Language)
		}
		if a.LastUpdated.After(last) {
			last = a.LastUpdated
		}
	}
	for key, entry := range s.projectState {
		summary.ProjectStateKeys = append(summary.ProjectStateKeys, key)
		if entry.LastUpdated.After(last) {
			last = entry.LastUpdated
		}
	}
	if n := len(s.conversation); n > 0 && s.conversation[n-1].Timestamp.After(last) {
		last = s.conversation[n-1].Timestamp
	}

	sort.Strings(summary.Languages)
	sort.Strings(summary.ProjectStateKeys)
	summary.LastActivity = last
	return summary
}
