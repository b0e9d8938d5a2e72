package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ReadJournal reads every event of the journal in dir. A missing journal
// yields no events and no error. A line cut off by a killed run is skipped
// when it is the last line or is followed directly by the start of a new
// run; any other malformed line is reported with its line number.
func ReadJournal(dir string) ([]AuditEvent, error) {
	path := filepath.Join(dir, JournalFile)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	var events []AuditEvent
	var truncated error
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e AuditEvent
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			if truncated != nil {
				return events, truncated
			}
			truncated = fmt.Errorf("%s:%d: %w", path, line, err)
			continue
		}
		if truncated != nil && e.EventType != EventRunStart {
			return events, truncated
		}
		truncated = nil
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("failed to read journal: %w", err)
	}
	return events, nil
}

// Runs folds events into one RunInfo per run, in start order. A run with
// no RUN_END event is reported as interrupted.
func Runs(events []AuditEvent) []RunInfo {
	var runs []RunInfo
	index := make(map[RunID]int)

	for _, e := range events {
		i, ok := index[e.RunID]
		if !ok {
			if e.EventType != EventRunStart {
				continue
			}
			index[e.RunID] = len(runs)
			runs = append(runs, RunInfo{
				RunID:     e.RunID,
				Operation: e.Operation,
				StartTime: e.Timestamp,
				Status:    RunStatusInterrupted,
			})
			continue
		}

		run := &runs[i]
		switch e.EventType {
		case EventCopy:
			run.Summary.Copied++
			run.Summary.Bytes += e.Bytes
		case EventCopyFailed:
			run.Summary.Failed++
		case EventRunEnd:
			end := e.Timestamp
			run.EndTime = &end
			run.Status = e.RunStatus
			if e.Summary != nil {
				run.Summary = *e.Summary
			}
		}
	}
	return runs
}

// Origin returns the source of the most recent copy into dest.
func Origin(events []AuditEvent, dest string) (string, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		if e.EventType == EventCopy && e.DestinationPath == dest {
			return e.SourcePath, true
		}
	}
	return "", false
}

// Copies maps each source path to the destination of its most recent
// successful copy.
func Copies(events []AuditEvent) map[string]string {
	copies := make(map[string]string)
	for _, e := range events {
		if e.EventType == EventCopy {
			copies[e.SourcePath] = e.DestinationPath
		}
	}
	return copies
}
