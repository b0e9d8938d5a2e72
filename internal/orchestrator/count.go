package orchestrator

import (
	"context"
	"slices"
	"strconv"

	"podscan/internal/scanner"
)

// FileTypeTally maps a lowercased extension to its file count.
type FileTypeTally map[string]int

// Extensions returns the tallied extensions in sorted order.
func (t FileTypeTally) Extensions() []string {
	exts := make([]string, 0, len(t))
	for ext := range t {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// CountResult holds the totals of a count pass.
type CountResult struct {
	Total  int
	ByType FileTypeTally
}

// Count tallies the supported audio files per extension and prints the
// tally as a table. No file is opened.
func (o *Orchestrator) Count(ctx context.Context) (*CountResult, error) {
	root := o.config.MusicRoot
	if err := scanner.CheckRoot(root); err != nil {
		return nil, err
	}

	result := &CountResult{ByType: make(FileTypeTally)}
	for entry, walkErr := range scanner.Walk(root) {
		if walkErr != nil {
			return result, walkErr
		}
		if err := canceled(ctx, "count"); err != nil {
			return result, err
		}
		result.Total++
		result.ByType[entry.Ext]++
	}

	rows := make([][]string, 0, len(result.ByType)+1)
	for _, ext := range result.ByType.Extensions() {
		rows = append(rows, []string{ext, strconv.Itoa(result.ByType[ext])})
	}
	rows = append(rows, []string{"Total", strconv.Itoa(result.Total)})

	o.out.Info("Audio files:")
	o.out.Table([]string{"Extension", "Files"}, rows, 1)
	o.logger.Info("count finished", "total", result.Total, "types", len(result.ByType))
	return result, nil
}
