package orchestrator

import (
	"context"
	"errors"

	"podscan/internal/metadata"
	"podscan/internal/report"
	"podscan/internal/scanner"
)

// NoArtistResult summarizes a no-artist pass.
type NoArtistResult struct {
	ReportPath string
	Found      int
	Skipped    int // tag read failures
}

// FindWithoutArtist writes every ID3 or MPEG-4 file that has a valid title
// but no artist to the no-artist report. Tags are read directly with no
// file name fallback; files whose tags cannot be read are skipped.
func (o *Orchestrator) FindWithoutArtist(ctx context.Context) (result *NoArtistResult, err error) {
	root := o.config.MusicRoot
	if err := scanner.CheckRoot(root); err != nil {
		return nil, err
	}

	result = &NoArtistResult{ReportPath: o.config.ReportPath(o.config.Output.NoArtistReport)}
	f, err := createReport(result.ReportPath)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	rep, err := report.NewNoArtistReport(f)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, rep.Flush()) }()

	for entry, walkErr := range scanner.Walk(root) {
		if walkErr != nil {
			return result, walkErr
		}
		if err := canceled(ctx, "no-artist"); err != nil {
			return result, err
		}
		if !metadata.FormatOf(entry.FullPath).HasTags() {
			continue
		}

		tags, err := o.reader.ReadTags(entry.FullPath)
		if err != nil {
			result.Skipped++
			o.logger.Debug("skipping unreadable tags", "path", entry.FullPath, "error", err)
			continue
		}
		if tags.Title == "" || tags.Artist != "" || !o.validator.IsValid(tags.Title) {
			continue
		}

		result.Found++
		o.out.Verbose("No artist: %s", tags.Title)
		if err := rep.Add(tags.Title, entry.FullPath); err != nil {
			return result, err
		}
	}

	o.out.Info("\nFound %d songs without artist", result.Found)
	o.logger.Info("no-artist finished", "found", result.Found, "skipped", result.Skipped, "report", result.ReportPath)
	return result, nil
}
