package domain

import "time"

// StageStatus represents the state of one reshaping stage.
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusRunning   StageStatus = "running"
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
	StageStatusSkipped   StageStatus = "skipped"
)

// StageReport records what a stage did to the table.
type StageReport struct {
	Name      string        `json:"name"`
	Status    StageStatus   `json:"status"`
	Rows      int           `json:"rows"`
	Columns   int           `json:"columns"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
}

// RunReport is the outcome of a full TAF to TRF run.
type RunReport struct {
	TraceID   string        `json:"trace_id"`
	Input     string        `json:"input"`
	Output    string        `json:"output,omitempty"`
	Frequency string        `json:"frequency,omitempty"`
	Stages    []StageReport `json:"stages"`
	Duration  time.Duration `json:"duration"`
}
