package domain

import (
	"time"

	"github.com/google/uuid"
)

// BatchRunStatus represents the lifecycle state of an asynchronous batch run.
type BatchRunStatus string

const (
	RunQueued    BatchRunStatus = "QUEUED"
	RunRunning   BatchRunStatus = "RUNNING"
	RunSucceeded BatchRunStatus = "SUCCEEDED"
	RunFailed    BatchRunStatus = "FAILED"
)

// IsTerminal returns true if the status represents a final state.
func (s BatchRunStatus) IsTerminal() bool {
	return s == RunSucceeded || s == RunFailed
}

// UnitFailure describes one record that could not be processed.
type UnitFailure struct {
	RecordID int64  `json:"record_id"`
	Error    string `json:"error"`
}

// BatchRun is the tracked document of an asynchronous batch run.
type BatchRun struct {
	RunID          uuid.UUID      `json:"run_id"`
	Status         BatchRunStatus `json:"status"`
	ProcessedIDs   []int64        `json:"processed_ids,omitempty"`
	ProcessedCount int            `json:"processed_count"`
	Failures       []UnitFailure  `json:"failures,omitempty"`
	Error          string         `json:"error,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	StartedAt      *time.Time     `json:"started_at,omitempty"`
	FinishedAt     *time.Time     `json:"finished_at,omitempty"`
}

// BatchRunRequest is the message published to trigger an asynchronous run.
type BatchRunRequest struct {
	RunID uuid.UUID `json:"run_id"`
}

// BatchRunMessage wraps a consumed request with broker acknowledgement callbacks.
type BatchRunMessage struct {
	Request *BatchRunRequest
	Ack     func() error
	Nack    func(requeue bool) error
}
