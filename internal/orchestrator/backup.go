package orchestrator

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"podscan/internal/audit"
	"podscan/internal/organizer"
	"podscan/internal/scanner"
)

// BackupResult summarizes a backup pass.
type BackupResult struct {
	DestDir string
	DryRun  bool
	Copied  int
	Failed  int
	Bytes   int64
	// Renamed counts copies that took a name_N suffix.
	Renamed int
}

// Backup copies every supported audio file into one flat destination
// directory. Names already taken get the first free "name_N.ext". A
// progress line is printed every Backup.ProgressInterval copies; copy
// failures are logged, counted and skipped.
func (o *Orchestrator) Backup(ctx context.Context, opts CopyOptions) (result *BackupResult, err error) {
	root := o.config.MusicRoot
	if err := scanner.CheckRoot(root); err != nil {
		return nil, err
	}

	result = &BackupResult{DestDir: opts.DestDir, DryRun: opts.DryRun}
	if result.DestDir == "" {
		result.DestDir = o.config.Backup.DestDir
	}
	interval := o.config.Backup.ProgressInterval
	if interval <= 0 {
		interval = 100
	}

	var journal *audit.AuditWriter
	if !opts.DryRun {
		if err := organizer.EnsureDir(result.DestDir); err != nil {
			return nil, err
		}
		if journal, err = o.startJournal(result.DestDir, "backup"); err != nil {
			return nil, err
		}
		defer func() { err = errors.Join(err, finishJournal(journal, err)) }()
	}
	o.out.Info("Backing up music files to: %s", result.DestDir)
	o.out.StartProgress(0)
	defer o.out.EndProgress()

	planned := make(map[string]bool)
	for entry, walkErr := range scanner.Walk(root) {
		if walkErr != nil {
			return result, walkErr
		}
		if err := canceled(ctx, "backup"); err != nil {
			return result, err
		}

		if opts.DryRun {
			name := planName(result.DestDir, entry.Name, planned)
			if name != entry.Name {
				result.Renamed++
			}
			result.Copied++
			o.out.Verbose("Would copy %s -> %s", entry.FullPath, filepath.Join(result.DestDir, name))
			continue
		}

		copied, copyErr := organizer.CopyInto(entry.FullPath, result.DestDir)
		if copyErr != nil {
			result.Failed++
			o.logger.Warn("copy failed", "path", entry.FullPath, "error", copyErr)
			o.out.Error("Copy failed: %s\nError: %v", entry.Name, copyErr)
			if err := journal.RecordFailure(entry.FullPath, copyErr); err != nil {
				return result, err
			}
			continue
		}
		if err := journal.RecordCopy(entry.FullPath, copied.DestinationPath, copied.Bytes); err != nil {
			return result, err
		}

		result.Copied++
		result.Bytes += copied.Bytes
		if copied.IsDuplicate {
			result.Renamed++
		}
		o.out.Verbose("Copied %s -> %s", entry.FullPath, copied.DestinationPath)
		o.out.UpdateProgress(result.Copied, "Copied")
		if result.Copied%interval == 0 {
			o.out.Info("Copied: %d files", result.Copied)
		}
	}
	o.out.EndProgress()

	o.out.Info("%s", result.Summary())
	o.logger.Info("backup finished",
		"copied", result.Copied,
		"failed", result.Failed,
		"bytes", result.Bytes,
		"dest", result.DestDir,
		"dry_run", opts.DryRun,
	)
	return result, nil
}

// Summary returns the operator-facing result block.
func (r *BackupResult) Summary() string {
	if r.DryRun {
		return "\nDry run: would copy " + humanize.Comma(int64(r.Copied)) + " files (" + humanize.Comma(int64(r.Renamed)) + " renamed)"
	}
	s := "\nBackup complete!\n------------------------------\n" +
		"Copied: " + humanize.Comma(int64(r.Copied)) + " files (" + humanize.Bytes(uint64(r.Bytes)) + ")"
	if r.Failed > 0 {
		s += "\nFailed: " + humanize.Comma(int64(r.Failed)) + " files"
	}
	return s
}
