// Package report writes podscan's plain-text report files.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"podscan/internal/classifier"
)

var (
	fileRule    = strings.Repeat("-", 50)
	sectionRule = strings.Repeat("-", 30)
	entryRule   = strings.Repeat("-", 20)
)

// FormatDuration renders seconds as HH:MM:SS, or MM:SS below one hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// SongList writes one "<title> [<duration>]" line per exported song.
type SongList struct {
	w *bufio.Writer
}

// NewSongList writes the list header to w.
func NewSongList(w io.Writer) (*SongList, error) {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "Song Titles\n%s\n", fileRule); err != nil {
		return nil, err
	}
	return &SongList{w: bw}, nil
}

// Add writes a song line.
func (s *SongList) Add(title string, durationSeconds int) error {
	_, err := fmt.Fprintf(s.w, "%s [%s]\n", title, FormatDuration(durationSeconds))
	return err
}

// Flush writes any buffered lines.
func (s *SongList) Flush() error {
	return s.w.Flush()
}

// ProblemEntry is one file that could not be exported cleanly.
type ProblemEntry struct {
	Name            string
	Path            string
	DurationSeconds int
	Title           string // InvalidTitle only
	Error           string // ReadError only
}

var sectionTitles = map[classifier.Bucket]string{
	classifier.EmptyTitle:   "1. Empty titles:",
	classifier.InvalidTitle: "2. Garbled titles:",
	classifier.ReadError:    "3. Read errors:",
}

// ProblemReport writes problem files grouped under a header per bucket. A
// bucket's header is written the first time that bucket occurs.
type ProblemReport struct {
	w    *bufio.Writer
	seen map[classifier.Bucket]bool
}

// NewProblemReport writes the report header to w.
func NewProblemReport(w io.Writer) (*ProblemReport, error) {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "Problem Files\n%s\n", fileRule); err != nil {
		return nil, err
	}
	return &ProblemReport{w: bw, seen: make(map[classifier.Bucket]bool)}, nil
}

// Add writes an entry for a problem bucket.
func (p *ProblemReport) Add(bucket classifier.Bucket, e ProblemEntry) error {
	header, ok := sectionTitles[bucket]
	if !ok {
		return fmt.Errorf("bucket %s is not a problem bucket", bucket)
	}
	if !p.seen[bucket] {
		p.seen[bucket] = true
		fmt.Fprintf(p.w, "\n%s\n%s\n", header, sectionRule)
	}

	fmt.Fprintf(p.w, "File: %s\n", e.Name)
	switch bucket {
	case classifier.InvalidTitle:
		fmt.Fprintf(p.w, "Title: %s\n", e.Title)
	case classifier.ReadError:
		fmt.Fprintf(p.w, "Error: %s\n", e.Error)
	}
	fmt.Fprintf(p.w, "Path: %s\n", e.Path)
	_, err := fmt.Fprintf(p.w, "Duration: %s\n%s\n", FormatDuration(e.DurationSeconds), entryRule)
	return err
}

// Flush writes any buffered entries.
func (p *ProblemReport) Flush() error {
	return p.w.Flush()
}

// NoArtistReport lists songs that have a clean title but no artist.
type NoArtistReport struct {
	w *bufio.Writer
}

// NewNoArtistReport writes the report header to w.
func NewNoArtistReport(w io.Writer) (*NoArtistReport, error) {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "Songs Without Artist\n%s\n", fileRule); err != nil {
		return nil, err
	}
	return &NoArtistReport{w: bw}, nil
}

// Add writes an entry.
func (n *NoArtistReport) Add(title, path string) error {
	_, err := fmt.Fprintf(n.w, "Title: %s\nPath: %s\n%s\n", title, path, sectionRule)
	return err
}

// Flush writes any buffered entries.
func (n *NoArtistReport) Flush() error {
	return n.w.Flush()
}
