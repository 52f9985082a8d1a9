package pipeline

import (
	"fmt"
	"sync"

	apperrors "roicli/internal/errors"
)

// Registry holds stages in registration order.
type Registry struct {
	mu     sync.RWMutex
	stages map[string]Stage
	order  []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{stages: make(map[string]Stage)}
}

// Register adds a stage to the registry
func (r *Registry) Register(stage Stage) error {
	if stage == nil {
		return apperrors.NewInvalidConfigurationError("cannot register nil stage")
	}
	id := stage.ID()
	if id == "" {
		return apperrors.NewInvalidConfigurationError("stage ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.stages[id]; exists {
		return apperrors.NewNonUniqueKeyError(fmt.Sprintf("stage with ID %s already registered", id))
	}
	r.stages[id] = stage
	r.order = append(r.order, id)
	return nil
}

// Get retrieves a stage by ID
func (r *Registry) Get(id string) (Stage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stage, exists := r.stages[id]
	if !exists {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("stage %s", id))
	}
	return stage, nil
}

// List returns all registered stages in registration order
func (r *Registry) List() []Stage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stages := make([]Stage, 0, len(r.order))
	for _, id := range r.order {
		stages = append(stages, r.stages[id])
	}
	return stages
}

// ListIDs returns all registered stage IDs in registration order
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Count returns the number of registered stages
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
