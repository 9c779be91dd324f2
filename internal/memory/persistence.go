package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/flock"
	"github.com/mrz1836/forge/internal/fsutil"
)

// Open creates a store and loads its snapshot. A snapshot that cannot be
// read is logged and the store starts empty.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger, opts ...Option) (*Store, error) {
	s, err := New(cfg, logger, opts...)
	if err != nil {
		return nil, err
	}
	// Load has already logged the failure; the store stays empty.
	_ = s.Load(ctx)
	return s, nil
}

// Snapshot returns the persisted subset of the store.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() domain.Snapshot {
	conv := make([]domain.ConversationEntry, len(s.conversation))
	copy(conv, s.conversation)

	learning := make(map[string][]domain.LearningRecord, len(s.learning))
	for k, v := range s.learning {
		learning[k] = append([]domain.LearningRecord(nil), v...)
	}

	return domain.Snapshot{
		ConversationHistory: conv,
		CodeContext:         maps.Clone(s.code),
		ProjectState:        maps.Clone(s.projectState),
		LearningMemory:      learning,
	}
}

// Save writes the snapshot atomically under a file lock. Concurrent callers
// share one write, and a caller whose changes arrived after that write began
// triggers another. Failures are logged and returned wrapped in
// ErrPersistence; callers treat them as non-fatal.
func (s *Store) Save(ctx context.Context) error {
	path := s.SnapshotPath()
	if path == "" {
		return nil
	}

	for {
		s.mu.RLock()
		want := s.revision
		s.mu.RUnlock()

		_, err, _ := s.saves.Do(path, func() (any, error) {
			return nil, s.write(ctx, path)
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("failed to save context memory")
			return err
		}

		s.mu.RLock()
		saved := s.savedRevision
		s.mu.RUnlock()
		if saved >= want {
			return nil
		}
	}
}

func (s *Store) write(ctx context.Context, path string) error {
	s.mu.RLock()
	snapshot := s.snapshotLocked()
	rev := s.revision
	s.mu.RUnlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return forgeerrors.Join(forgeerrors.ErrPersistence, err, "failed to encode snapshot")
	}

	lock, err := flock.Acquire(ctx, path+constants.LockFileSuffix, constants.LockTimeout, constants.LockRetryInterval)
	if err != nil {
		return forgeerrors.Join(forgeerrors.ErrPersistence, err, "failed to lock snapshot")
	}
	defer func() { _ = lock.Release() }()

	if err := fsutil.AtomicWrite(path, data, fsutil.FilePerm); err != nil {
		return forgeerrors.Join(forgeerrors.ErrPersistence, err, "failed to write snapshot")
	}

	s.mu.Lock()
	if rev > s.savedRevision {
		s.savedRevision = rev
	}
	s.mu.Unlock()

	s.logger.Debug().
		Str("path", path).
		Int("conversation_entries", len(snapshot.ConversationHistory)).
		Int("artifacts", len(snapshot.CodeContext)).
		Msg("context memory saved")
	return nil
}

// Load replaces the persisted subset of the store with the snapshot on
// disk. A missing snapshot is not an error. A damaged one is repaired when
// possible; otherwise the store is left unchanged and the failure is logged
// and returned wrapped in ErrPersistence.
func (s *Store) Load(ctx context.Context) error {
	path := s.SnapshotPath()
	if path == "" {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := os.ReadFile(path) //#nosec G304 -- path is constructed from configured memory dir
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		err = forgeerrors.Join(forgeerrors.ErrPersistence, err, "failed to read snapshot")
		s.logger.Warn().Err(err).Str("path", path).Msg("failed to load context memory")
		return err
	}

	snapshot, err := s.decode(data)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("failed to load context memory")
		return err
	}

	s.mu.Lock()
	s.conversation = snapshot.ConversationHistory
	s.code = orEmpty(snapshot.CodeContext)
	s.projectState = orEmpty(snapshot.ProjectState)
	s.learning = orEmpty(snapshot.LearningMemory)
	s.savedRevision = s.revision
	s.mu.Unlock()

	s.logger.Debug().
		Str("path", path).
		Int("conversation_entries", len(snapshot.ConversationHistory)).
		Int("artifacts", len(snapshot.CodeContext)).
		Msg("context memory loaded")
	return nil
}

func (s *Store) decode(data []byte) (domain.Snapshot, error) {
	var snapshot domain.Snapshot
	err := json.Unmarshal(data, &snapshot)
	if err == nil {
		return snapshot, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(string(data))
	if repairErr != nil {
		return domain.Snapshot{}, forgeerrors.Join(forgeerrors.ErrPersistence,
			fmt.Errorf("%w: %w", forgeerrors.ErrSnapshotCorrupt, err), "failed to parse snapshot")
	}

	snapshot = domain.Snapshot{}
	if err := json.Unmarshal([]byte(repaired), &snapshot); err != nil {
		return domain.Snapshot{}, forgeerrors.Join(forgeerrors.ErrPersistence,
			fmt.Errorf("%w: %w", forgeerrors.ErrSnapshotCorrupt, err), "failed to parse repaired snapshot")
	}

	s.logger.Warn().Msg("context memory snapshot was damaged and has been repaired")
	return snapshot, nil
}

func orEmpty[V any](m map[string]V) map[string]V {
	if m == nil {
		return make(map[string]V)
	}
	return m
}
