package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"podscan/internal/audit"
	"podscan/internal/organizer"
	"podscan/internal/scanner"
)

// SearchMatch is one file whose title contains the keyword.
type SearchMatch struct {
	Title           string
	SourcePath      string
	DestinationPath string
}

// SearchResult collects the matches of a search.
type SearchResult struct {
	Keyword string
	DestDir string
	DryRun  bool
	Matches []SearchMatch
	Failed  int
	Skipped int // matches an earlier search already copied
}

// Found reports whether at least one file matched.
func (r *SearchResult) Found() bool {
	return len(r.Matches) > 0
}

// Search copies every file whose title contains keyword (literal,
// case-sensitive) into the search destination. Titles come from the
// metadata reader, so untagged files match on their file name. A match
// whose earlier copy is still in the destination is not copied again. A
// copy that fails is logged and counted; the search goes on.
func (o *Orchestrator) Search(ctx context.Context, keyword string, opts CopyOptions) (result *SearchResult, err error) {
	root := o.config.MusicRoot
	if err := scanner.CheckRoot(root); err != nil {
		return nil, err
	}

	result = &SearchResult{
		Keyword: keyword,
		DestDir: opts.DestDir,
		DryRun:  opts.DryRun,
	}
	if result.DestDir == "" {
		result.DestDir = o.config.Search.DestDir
	}
	earlier := o.earlierCopies(result.DestDir)

	var journal *audit.AuditWriter
	if !opts.DryRun {
		if err := organizer.EnsureDir(result.DestDir); err != nil {
			return nil, err
		}
		if journal, err = o.startJournal(result.DestDir, "search"); err != nil {
			return nil, err
		}
		defer func() { err = errors.Join(err, finishJournal(journal, err)) }()
	}

	planned := make(map[string]bool)
	for entry, walkErr := range scanner.Walk(root) {
		if walkErr != nil {
			return result, walkErr
		}
		if err := canceled(ctx, "search"); err != nil {
			return result, err
		}

		title := o.reader.ReadTitle(entry.FullPath)
		if title == "" || !strings.Contains(title, keyword) {
			continue
		}

		match := SearchMatch{Title: title, SourcePath: entry.FullPath}
		if dest, ok := stillCopied(earlier, entry.FullPath); ok {
			result.Skipped++
			match.DestinationPath = dest
			result.Matches = append(result.Matches, match)
			o.out.Info("Already copied: %s\n  %s", title, dest)
			continue
		}
		if opts.DryRun {
			name := planName(result.DestDir, entry.Name, planned)
			match.DestinationPath = filepath.Join(result.DestDir, name)
			o.out.Info("Would copy: %s\n  %s -> %s", title, entry.FullPath, match.DestinationPath)
			result.Matches = append(result.Matches, match)
			continue
		}

		copied, copyErr := organizer.CopyInto(entry.FullPath, result.DestDir)
		if copyErr != nil {
			result.Failed++
			o.logger.Warn("copy failed", "path", entry.FullPath, "error", copyErr)
			o.out.Error("Copy failed: %s: %v", entry.Name, copyErr)
			if err := journal.RecordFailure(entry.FullPath, copyErr); err != nil {
				return result, err
			}
			continue
		}
		if err := journal.RecordCopy(entry.FullPath, copied.DestinationPath, copied.Bytes); err != nil {
			return result, err
		}
		match.DestinationPath = copied.DestinationPath
		result.Matches = append(result.Matches, match)
		o.out.Info("Found: %s\n  Path: %s", title, entry.FullPath)
		o.logger.Debug("copied match", "source", entry.FullPath, "destination", copied.DestinationPath)
	}

	if result.Found() {
		verb := "Found and copied"
		if opts.DryRun {
			verb = "Would copy"
		}
		o.out.Info("\n%s %d files", verb, len(result.Matches)-result.Skipped)
		if result.Skipped > 0 {
			o.out.Info("%d files were already copied earlier", result.Skipped)
		}
	} else {
		o.out.Info("No file with a title containing %q", keyword)
	}
	o.logger.Info("search finished", "keyword", keyword, "matches", len(result.Matches), "skipped", result.Skipped, "failed", result.Failed, "dry_run", opts.DryRun)
	return result, nil
}

// planName picks the name a dry run would copy to, remembering earlier
// picks so that two planned copies never share a name.
func planName(destDir, name string, planned map[string]bool) string {
	chosen := organizer.UniqueNameWith(name, func(candidate string) bool {
		return planned[candidate] || organizer.FileExists(filepath.Join(destDir, candidate))
	})
	planned[chosen] = true
	return chosen
}

// earlierCopies reads the copies journaled in destDir. An unreadable
// journal only disables skipping.
func (o *Orchestrator) earlierCopies(destDir string) map[string]string {
	events, err := audit.ReadJournal(destDir)
	if err != nil {
		o.logger.Warn("cannot read journal; earlier copies will be repeated", "dest", destDir, "error", err)
	}
	return audit.Copies(events)
}

// stillCopied reports where src was copied before, provided that copy is
// still in place with the source's size.
func stillCopied(earlier map[string]string, src string) (string, bool) {
	dest, ok := earlier[src]
	if !ok {
		return "", false
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", false
	}
	destInfo, err := os.Stat(dest)
	if err != nil || !destInfo.Mode().IsRegular() || destInfo.Size() != srcInfo.Size() {
		return "", false
	}
	return dest, true
}
