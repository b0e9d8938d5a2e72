package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"podscan/internal/classifier"
	"podscan/internal/report"
)

// RunStatistics contains the counters of one export run.
type RunStatistics struct {
	TotalFiles           int
	Exported             int
	EmptyTitles          int
	InvalidTitles        int
	ReadErrors           int
	TotalDurationSeconds int
	SongListPath         string
	ProblemReportPath    string
	Elapsed              time.Duration
}

// record folds one classified file into the counters.
func (s *RunStatistics) record(bucket classifier.Bucket, durationSeconds int) {
	s.TotalFiles++
	switch bucket {
	case classifier.Exported:
		s.Exported++
		s.TotalDurationSeconds += durationSeconds
	case classifier.EmptyTitle:
		s.EmptyTitles++
	case classifier.InvalidTitle:
		s.InvalidTitles++
	case classifier.ReadError:
		s.ReadErrors++
	}
}

// Problems returns the number of files that ended up in the problem report.
func (s *RunStatistics) Problems() int {
	return s.EmptyTitles + s.InvalidTitles + s.ReadErrors
}

// TotalHours returns the whole hours of exported audio.
func (s *RunStatistics) TotalHours() int {
	return s.TotalDurationSeconds / 3600
}

// Summary returns the operator-facing statistics block.
func (s *RunStatistics) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "File statistics:\n%s\n", strings.Repeat("-", 30))
	fmt.Fprintf(&b, "Total files: %d\n", s.TotalFiles)
	fmt.Fprintf(&b, "Exported: %d\n", s.Exported)
	fmt.Fprintf(&b, "Empty titles: %d\n", s.EmptyTitles)
	fmt.Fprintf(&b, "Garbled titles: %d\n", s.InvalidTitles)
	fmt.Fprintf(&b, "Read errors: %d\n", s.ReadErrors)
	fmt.Fprintf(&b, "Total duration: %d hours (%s)\n", s.TotalHours(), report.FormatDuration(s.TotalDurationSeconds))
	fmt.Fprintf(&b, "\nSong list saved to: %s\n", s.SongListPath)
	fmt.Fprintf(&b, "Problem report saved to: %s", s.ProblemReportPath)
	return b.String()
}
