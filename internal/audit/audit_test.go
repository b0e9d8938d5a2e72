package audit

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestWriterAndReader(t *testing.T) {
	dir := t.TempDir()

	w, err := NewAuditWriter(dir)
	if err != nil {
		t.Fatalf("NewAuditWriter: %v", err)
	}
	runID, err := w.StartRun("backup")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if w.CurrentRun() != runID {
		t.Errorf("CurrentRun = %q, want %q", w.CurrentRun(), runID)
	}
	if err := w.RecordCopy("/ipod/F00/song.mp3", filepath.Join(dir, "song.mp3"), 100); err != nil {
		t.Fatal(err)
	}
	if err := w.RecordCopy("/ipod/F01/song.mp3", filepath.Join(dir, "song_1.mp3"), 50); err != nil {
		t.Fatal(err)
	}
	if err := w.RecordFailure("/ipod/F02/bad.mp3", errors.New("permission denied")); err != nil {
		t.Fatal(err)
	}
	if err := w.EndRun(RunStatusCompleted); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	events, err := ReadJournal(dir)
	if err != nil {
		t.Fatalf("ReadJournal: %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}

	runs := Runs(events)
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.RunID != runID || run.Operation != "backup" || run.Status != RunStatusCompleted {
		t.Errorf("unexpected run info: %+v", run)
	}
	if run.Summary != (RunSummary{Copied: 2, Failed: 1, Bytes: 150}) {
		t.Errorf("unexpected summary: %+v", run.Summary)
	}
	if run.EndTime == nil {
		t.Error("expected an end time")
	}

	src, ok := Origin(events, filepath.Join(dir, "song_1.mp3"))
	if !ok || src != "/ipod/F01/song.mp3" {
		t.Errorf("Origin = %q, %v", src, ok)
	}
	if _, ok := Origin(events, filepath.Join(dir, "other.mp3")); ok {
		t.Error("Origin found a file that was never copied")
	}
}

func TestRunWithoutEndIsInterrupted(t *testing.T) {
	dir := t.TempDir()
	w, err := NewAuditWriter(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.StartRun("search"); err != nil {
		t.Fatal(err)
	}
	if err := w.RecordCopy("/a.mp3", "/b/a.mp3", 1); err != nil {
		t.Fatal(err)
	}
	w.Close()

	events, err := ReadJournal(dir)
	if err != nil {
		t.Fatal(err)
	}
	runs := Runs(events)
	if len(runs) != 1 || runs[0].Status != RunStatusInterrupted || runs[0].Summary.Copied != 1 {
		t.Errorf("unexpected runs: %+v", runs)
	}
}

func TestJournalAppendsAcrossWriters(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		w, err := NewAuditWriter(dir)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.StartRun("backup"); err != nil {
			t.Fatal(err)
		}
		if err := w.EndRun(RunStatusCompleted); err != nil {
			t.Fatal(err)
		}
		w.Close()
	}

	events, err := ReadJournal(dir)
	if err != nil {
		t.Fatal(err)
	}
	runs := Runs(events)
	if len(runs) != 2 || runs[0].RunID == runs[1].RunID {
		t.Errorf("expected two distinct runs, got %+v", runs)
	}
}

func TestRecordOutsideRun(t *testing.T) {
	w, err := NewAuditWriter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.RecordCopy("a", "b", 1); !errors.Is(err, ErrNoActiveRun) {
		t.Errorf("RecordCopy outside run: %v", err)
	}
	if err := w.EndRun(RunStatusCompleted); !errors.Is(err, ErrNoActiveRun) {
		t.Errorf("EndRun outside run: %v", err)
	}
}

func TestReadJournalMissingAndMalformed(t *testing.T) {
	dir := t.TempDir()
	events, err := ReadJournal(dir)
	if err != nil || events != nil {
		t.Fatalf("missing journal: %v, %v", events, err)
	}

	broken := "{not json}\n" + `{"timestamp":"2024-03-01T12:00:00Z","runId":"r","eventType":"COPY","status":"SUCCESS"}` + "\n"
	if err := os.WriteFile(filepath.Join(dir, JournalFile), []byte(broken), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadJournal(dir); err == nil || !strings.Contains(err.Error(), ":1:") {
		t.Errorf("expected a line-numbered error, got %v", err)
	}
}

func TestReadJournalSkipsCutOffTail(t *testing.T) {
	dir := t.TempDir()
	w, err := NewAuditWriter(dir)
	if err != nil {
		t.Fatalf("NewAuditWriter: %v", err)
	}
	if _, err := w.StartRun("backup"); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := w.RecordCopy("/music/F00/a.mp3", "/backup/a.mp3", 10); err != nil {
		t.Fatalf("RecordCopy: %v", err)
	}
	w.Close()

	// the process died halfway through the next event
	f, err := os.OpenFile(filepath.Join(dir, JournalFile), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString(`{"timestamp":"2024-03-01T12:00:00Z","runId":"x","eventT`)
	f.Close()

	events, err := ReadJournal(dir)
	if err != nil {
		t.Fatalf("ReadJournal with cut-off tail: %v", err)
	}
	runs := Runs(events)
	if len(runs) != 1 || runs[0].Status != RunStatusInterrupted || runs[0].Summary.Copied != 1 {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	// a later run starts on a fresh line and both runs read back
	w, err = NewAuditWriter(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := w.StartRun("search"); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := w.EndRun(RunStatusCompleted); err != nil {
		t.Fatalf("EndRun: %v", err)
	}
	w.Close()

	events, err = ReadJournal(dir)
	if err != nil {
		t.Fatalf("ReadJournal after a new run: %v", err)
	}
	runs = Runs(events)
	if len(runs) != 2 || runs[0].Status != RunStatusInterrupted || runs[1].Status != RunStatusCompleted {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestEventOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(AuditEvent{
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		RunID:     "run",
		EventType: EventRunStart,
		Status:    StatusSuccess,
		Operation: "backup",
	})
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, absent := range []string{"sourcePath", "destinationPath", "bytes", "error", "summary", "runStatus"} {
		if strings.Contains(s, absent) {
			t.Errorf("%s should be omitted: %s", absent, s)
		}
	}
	if !strings.Contains(s, `"timestamp":"2024-03-01T12:00:00Z"`) {
		t.Errorf("unexpected timestamp encoding: %s", s)
	}
}

func TestCopyEventsSurviveJournal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("copied bytes are summed per run", prop.ForAll(
		func(sizes []int64) bool {
			dir := t.TempDir()
			w, err := NewAuditWriter(dir)
			if err != nil {
				return false
			}
			w.StartRun("backup")
			var total int64
			for i, n := range sizes {
				total += n
				w.RecordCopy("/src", filepath.Join(dir, string(rune('a'+i%26))), n)
			}
			w.EndRun(RunStatusCompleted)
			w.Close()

			events, err := ReadJournal(dir)
			if err != nil {
				return false
			}
			runs := Runs(events)
			return len(runs) == 1 && runs[0].Summary.Bytes == total && runs[0].Summary.Copied == len(sizes)
		},
		gen.SliceOf(gen.Int64Range(0, 1<<30)),
	))

	properties.TestingRun(t)
}
