package orchestrator

import (
	"context"
	"errors"
	"time"

	"podscan/internal/report"
	"podscan/internal/scanner"
)

// Export walks the music tree once, writes every cleanly titled song to the
// song list and every other file to the problem report, and returns the run
// counters. Both report files are created before the first file is read; a
// failure to create either aborts the run.
func (o *Orchestrator) Export(ctx context.Context) (stats *RunStatistics, err error) {
	start := time.Now()
	root := o.config.MusicRoot
	if err := scanner.CheckRoot(root); err != nil {
		return nil, err
	}

	stats = &RunStatistics{
		SongListPath:      o.config.ReportPath(o.config.Output.SongList),
		ProblemReportPath: o.config.ReportPath(o.config.Output.ProblemReport),
	}

	songFile, err := createReport(stats.SongListPath)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, songFile.Close()) }()

	problemFile, err := createReport(stats.ProblemReportPath)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, problemFile.Close()) }()

	songs, err := report.NewSongList(songFile)
	if err != nil {
		return nil, err
	}
	problems, err := report.NewProblemReport(problemFile)
	if err != nil {
		return nil, err
	}
	// Reports are flushed even when the walk stops early.
	defer func() {
		err = errors.Join(err, songs.Flush(), problems.Flush())
		stats.Elapsed = time.Since(start)
	}()

	o.logger.Info("export started", "root", root, "song_list", stats.SongListPath, "problem_report", stats.ProblemReportPath)

	for entry, walkErr := range scanner.Walk(root) {
		if walkErr != nil {
			return stats, walkErr
		}
		if err := canceled(ctx, "export"); err != nil {
			return stats, err
		}
		if err := o.exportFile(entry, songs, problems, stats); err != nil {
			return stats, err
		}
	}

	o.logger.Info("export finished",
		"total", stats.TotalFiles,
		"exported", stats.Exported,
		"problems", stats.Problems(),
		"duration_seconds", stats.TotalDurationSeconds,
	)
	return stats, nil
}

// exportFile reads, classifies and records a single file.
func (o *Orchestrator) exportFile(entry scanner.FileEntry, songs *report.SongList, problems *report.ProblemReport, stats *RunStatistics) error {
	rec, readErr := o.reader.Inspect(entry.FullPath)
	if readErr != nil {
		o.logger.Warn("cannot read file", "path", entry.FullPath, "error", readErr)
	}

	c := o.classifier.Classify(rec.Title, readErr)
	stats.record(c.Bucket, rec.DurationSeconds)
	o.out.Verbose("%s/%s: %s", entry.Folder, entry.Name, c.Bucket)

	if !c.IsProblem() {
		return songs.Add(c.Title, rec.DurationSeconds)
	}
	return problems.Add(c.Bucket, report.ProblemEntry{
		Name:            entry.Name,
		Path:            entry.FullPath,
		DurationSeconds: rec.DurationSeconds,
		Title:           c.Title,
		Error:           c.Reason,
	})
}
