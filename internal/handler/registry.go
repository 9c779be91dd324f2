package handler

import (
	"fmt"
	"sync"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// Registry maps categories to handlers.
// It provides thread-safe registration and lookup.
type Registry struct {
	mu       sync.RWMutex
	handlers map[constants.Category]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[constants.Category]Handler)}
}

// NewDefaultRegistry creates a registry holding the six built-in handlers.
func NewDefaultRegistry(deps *Deps) (*Registry, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	backend := deps.Artifacts.Backend
	frontend := deps.Artifacts.Frontend
	database := deps.Artifacts.Database

	r := NewRegistry()
	r.Register(newArtifactHandler(constants.CategoryBackend, backend, []string{database.File}, deps))
	r.Register(newArtifactHandler(constants.CategoryFrontend, frontend, []string{backend.File}, deps))
	r.Register(newArtifactHandler(constants.CategoryDatabase, database, nil, deps))
	r.Register(NewTestingHandler(deps))
	r.Register(NewDeploymentHandler(deps))
	r.Register(NewGenericHandler(deps))
	return r, nil
}

func (d *Deps) validate() error {
	switch {
	case d == nil:
		return fmt.Errorf("handler deps: %w", forgeerrors.ErrEmptyValue)
	case d.Generator == nil:
		return fmt.Errorf("handler deps: generator: %w", forgeerrors.ErrEmptyValue)
	case d.Tester == nil:
		return fmt.Errorf("handler deps: tester: %w", forgeerrors.ErrEmptyValue)
	case d.Deployer == nil:
		return fmt.Errorf("handler deps: deployer: %w", forgeerrors.ErrEmptyValue)
	case d.Files == nil:
		return fmt.Errorf("handler deps: files: %w", forgeerrors.ErrEmptyValue)
	case d.Memory == nil:
		return fmt.Errorf("handler deps: memory: %w", forgeerrors.ErrEmptyValue)
	}
	return nil
}

// Register adds a handler for its category, replacing any existing one.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Category()] = h
}

// Get returns the handler registered for a category.
func (r *Registry) Get(c constants.Category) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[c]
	return h, ok
}

// Resolve classifies the task and returns its handler.
// Returns ErrNoHandler if nothing is registered for the category.
func (r *Registry) Resolve(t *domain.Task) (Handler, error) {
	c := Classify(t.Title)
	h, ok := r.Get(c)
	if !ok {
		return nil, fmt.Errorf("%w: category %s for task %s", forgeerrors.ErrNoHandler, c, t.ID)
	}
	return h, nil
}
