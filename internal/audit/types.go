// Package audit keeps an append-only journal of the copies podscan makes,
// so that every file in a flat backup can be traced to its F* folder.
package audit

import "time"

// JournalFile is the journal's file name inside a destination directory.
const JournalFile = ".podscan-journal.jsonl"

// RunID is a unique identifier for each program execution.
type RunID string

// EventType represents the type of audit event.
type EventType string

const (
	// Run lifecycle events
	EventRunStart EventType = "RUN_START"
	EventRunEnd   EventType = "RUN_END"

	// File operation events
	EventCopy       EventType = "COPY"
	EventCopyFailed EventType = "COPY_FAILED"
)

// OperationStatus represents the outcome of an operation.
type OperationStatus string

const (
	StatusSuccess OperationStatus = "SUCCESS"
	StatusFailure OperationStatus = "FAILURE"
)

// RunStatus represents the status of a run.
type RunStatus string

const (
	RunStatusInProgress  RunStatus = "IN_PROGRESS"
	RunStatusCompleted   RunStatus = "COMPLETED"
	RunStatusInterrupted RunStatus = "INTERRUPTED"
	RunStatusFailed      RunStatus = "FAILED"
)

// AuditEvent represents a single journal record.
type AuditEvent struct {
	Timestamp       time.Time
	RunID           RunID
	EventType       EventType
	Status          OperationStatus
	Operation       string // "backup" or "search"; RUN_START only
	SourcePath      string
	DestinationPath string
	Bytes           int64
	Error           string
	RunStatus       RunStatus   // RUN_END only
	Summary         *RunSummary // RUN_END only
}

// RunSummary contains statistics for a run.
type RunSummary struct {
	Copied int   `json:"copied"`
	Failed int   `json:"failed"`
	Bytes  int64 `json:"bytes"`
}

// RunInfo contains metadata and summary for a run.
type RunInfo struct {
	RunID     RunID
	Operation string
	StartTime time.Time
	EndTime   *time.Time
	Status    RunStatus
	Summary   RunSummary
}
