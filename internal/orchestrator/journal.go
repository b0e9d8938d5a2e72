package orchestrator

import (
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"

	"podscan/internal/audit"
)

// JournalOptions selects the journal to show. An empty DestDir means the
// backup directory. Origin, when set, names a copied file to trace back.
type JournalOptions struct {
	DestDir string
	Origin  string
}

// JournalResult is the content of one destination's copy journal.
type JournalResult struct {
	DestDir string
	Runs    []audit.RunInfo
	Source  string // source of Origin, empty when unknown
}

// Journal prints the runs recorded in a destination's copy journal. With
// an origin set it also prints where that file was copied from.
func (o *Orchestrator) Journal(opts JournalOptions) (*JournalResult, error) {
	result := &JournalResult{DestDir: opts.DestDir}
	if result.DestDir == "" {
		result.DestDir = o.config.Backup.DestDir
	}

	events, err := audit.ReadJournal(result.DestDir)
	if err != nil {
		return nil, err
	}
	result.Runs = audit.Runs(events)

	if len(result.Runs) == 0 {
		o.out.Info("No copy runs recorded in %s", result.DestDir)
	} else {
		rows := make([][]string, 0, len(result.Runs))
		for _, run := range result.Runs {
			rows = append(rows, []string{
				shortID(run.RunID),
				run.Operation,
				run.StartTime.Local().Format("2006-01-02 15:04:05"),
				string(run.Status),
				strconv.Itoa(run.Summary.Copied),
				strconv.Itoa(run.Summary.Failed),
				humanize.Bytes(uint64(run.Summary.Bytes)),
			})
		}
		o.out.Table([]string{"Run", "Operation", "Started", "Status", "Copied", "Failed", "Bytes"}, rows, 4, 5, 6)
	}

	if opts.Origin != "" {
		dest := opts.Origin
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(result.DestDir, dest)
		}
		if source, ok := audit.Origin(events, dest); ok {
			result.Source = source
			o.out.Info("%s was copied from %s", filepath.Base(dest), source)
		} else {
			o.out.Info("No copy of %s recorded", filepath.Base(dest))
		}
	}
	return result, nil
}

func shortID(id audit.RunID) string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}
