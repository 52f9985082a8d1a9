package pipeline

import (
	"context"
	"sync"
	"time"

	"roicli/internal/table"
	"roicli/pkg/contracts/domain"
)

// State is the table flowing between stages plus what earlier stages
// learned about it.
type State struct {
	Table *table.Table
	// IDLevel is the object id row level, known once the parse stage ran.
	IDLevel string
	// Frequency is the inferred acquisition frequency, if any.
	Frequency string
}

// Stage is a single step of the pipeline.
type Stage interface {
	// ID returns the unique identifier for this stage
	ID() string

	// Name returns the human-readable name for this stage
	Name() string

	// Enabled reports whether the stage runs; disabled stages are skipped.
	Enabled() bool

	// Execute replaces state.Table with the stage's output.
	Execute(ctx context.Context, state *State) error
}

// BaseStage provides common functionality for Stage implementations
type BaseStage struct {
	id       string
	name     string
	disabled bool
}

// NewBaseStage creates a new base stage
func NewBaseStage(id, name string, enabled bool) BaseStage {
	return BaseStage{id: id, name: name, disabled: !enabled}
}

// ID returns the stage ID
func (b *BaseStage) ID() string { return b.id }

// Name returns the stage name
func (b *BaseStage) Name() string { return b.name }

// Enabled reports whether the stage runs
func (b *BaseStage) Enabled() bool { return !b.disabled }

// StageState represents the runtime state of a stage
type StageState struct {
	mu        sync.RWMutex
	id        string
	status    domain.StageStatus
	startTime time.Time
	endTime   time.Time
	rows      int
	columns   int
	err       error
}

// NewStageState creates a new stage state with default values
func NewStageState(id string) *StageState {
	return &StageState{id: id, status: domain.StageStatusPending}
}

// Start marks the stage as running and sets the start time
func (s *StageState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startTime = time.Now()
	s.status = domain.StageStatusRunning
}

// Complete marks the stage as completed with the shape of its output
func (s *StageState) Complete(rows, columns int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endTime = time.Now()
	s.status = domain.StageStatusCompleted
	s.rows, s.columns = rows, columns
}

// Fail marks the stage as failed with the given error
func (s *StageState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endTime = time.Now()
	s.status = domain.StageStatusFailed
	s.err = err
}

// Skip marks the stage as skipped
func (s *StageState) Skip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = domain.StageStatusSkipped
}

// Duration returns the duration of the stage execution
func (s *StageState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startTime.IsZero() {
		return 0
	}
	if !s.endTime.IsZero() {
		return s.endTime.Sub(s.startTime)
	}
	return time.Since(s.startTime)
}

// Report converts the state into a stage report.
func (s *StageState) Report() domain.StageReport {
	d := s.Duration()
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := domain.StageReport{
		Name:      s.id,
		Status:    s.status,
		Rows:      s.rows,
		Columns:   s.columns,
		Duration:  d,
		StartedAt: s.startTime,
	}
	if s.err != nil {
		r.Error = s.err.Error()
	}
	return r
}
