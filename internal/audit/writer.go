package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNoActiveRun is returned when an event is recorded outside a run.
var ErrNoActiveRun = errors.New("no active run")

// AuditWriter appends events to a destination directory's journal. Every
// event is flushed before the call returns; a write failure is returned to
// the caller, which stops copying.
type AuditWriter struct {
	mu         sync.Mutex
	file       *os.File
	writer     *bufio.Writer
	logPath    string
	currentRun RunID
	summary    RunSummary
}

// NewAuditWriter opens (or creates) the journal in dir.
func NewAuditWriter(dir string) (*AuditWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	logPath := filepath.Join(dir, JournalFile)
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := terminateLastLine(file); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to repair journal: %w", err)
	}

	return &AuditWriter{
		file:    file,
		writer:  bufio.NewWriter(file),
		logPath: logPath,
	}, nil
}

// terminateLastLine ends a line left unterminated by a killed run, so the
// next event starts on a line of its own.
func terminateLastLine(file *os.File) error {
	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return nil
	}
	last := make([]byte, 1)
	if _, err := file.ReadAt(last, info.Size()-1); err != nil {
		return err
	}
	if last[0] == '\n' {
		return nil
	}
	_, err = file.Write([]byte{'\n'})
	return err
}

// StartRun begins a run for operation and writes the RUN_START event.
func (w *AuditWriter) StartRun(operation string) (RunID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	runID := RunID(uuid.NewString())
	event := AuditEvent{
		Timestamp: time.Now(),
		RunID:     runID,
		EventType: EventRunStart,
		Status:    StatusSuccess,
		Operation: operation,
	}
	if err := w.writeEventLocked(event); err != nil {
		return "", fmt.Errorf("failed to write RUN_START event: %w", err)
	}

	w.currentRun = runID
	w.summary = RunSummary{}
	return runID, nil
}

// RecordCopy records a successful copy.
func (w *AuditWriter) RecordCopy(src, dst string, bytes int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentRun == "" {
		return ErrNoActiveRun
	}
	w.summary.Copied++
	w.summary.Bytes += bytes
	return w.writeEventLocked(AuditEvent{
		Timestamp:       time.Now(),
		RunID:           w.currentRun,
		EventType:       EventCopy,
		Status:          StatusSuccess,
		SourcePath:      src,
		DestinationPath: dst,
		Bytes:           bytes,
	})
}

// RecordFailure records a copy that failed.
func (w *AuditWriter) RecordFailure(src string, copyErr error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentRun == "" {
		return ErrNoActiveRun
	}
	w.summary.Failed++
	event := AuditEvent{
		Timestamp:  time.Now(),
		RunID:      w.currentRun,
		EventType:  EventCopyFailed,
		Status:     StatusFailure,
		SourcePath: src,
	}
	if copyErr != nil {
		event.Error = copyErr.Error()
	}
	return w.writeEventLocked(event)
}

// EndRun writes the RUN_END event carrying the run's status and totals.
func (w *AuditWriter) EndRun(status RunStatus) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentRun == "" {
		return ErrNoActiveRun
	}
	summary := w.summary
	event := AuditEvent{
		Timestamp: time.Now(),
		RunID:     w.currentRun,
		EventType: EventRunEnd,
		Status:    StatusSuccess,
		RunStatus: status,
		Summary:   &summary,
	}
	if status != RunStatusCompleted {
		event.Status = StatusFailure
	}
	if err := w.writeEventLocked(event); err != nil {
		return fmt.Errorf("failed to write RUN_END event: %w", err)
	}
	w.currentRun = ""
	return nil
}

// writeEventLocked writes one JSON line and flushes it. Caller holds mu.
func (w *AuditWriter) writeEventLocked(event AuditEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := w.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	return nil
}

// CurrentRun returns the active run, or "" between runs.
func (w *AuditWriter) CurrentRun() RunID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentRun
}

// Path returns the journal file path.
func (w *AuditWriter) Path() string {
	return w.logPath
}

// Close flushes and closes the journal.
func (w *AuditWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	flushErr := w.writer.Flush()
	closeErr := w.file.Close()
	w.file = nil
	return errors.Join(flushErr, closeErr)
}
