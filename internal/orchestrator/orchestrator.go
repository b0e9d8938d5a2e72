// Package orchestrator coordinates podscan's passes over the music tree:
// export, search, no-artist, count and backup.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"podscan/internal/audit"
	"podscan/internal/classifier"
	"podscan/internal/config"
	"podscan/internal/logging"
	"podscan/internal/metadata"
	"podscan/internal/output"
	"podscan/internal/textcheck"
)

// Orchestrator wraps the configuration and collaborators shared by every
// operation.
type Orchestrator struct {
	config     *config.Configuration
	logger     *slog.Logger
	out        *output.Output
	reader     *metadata.Reader
	validator  *textcheck.Validator
	classifier *classifier.Classifier
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithOutput sets the operator-facing output.
func WithOutput(out *output.Output) Option {
	return func(o *Orchestrator) {
		if out != nil {
			o.out = out
		}
	}
}

// NewOrchestrator creates a new Orchestrator with the given configuration.
func NewOrchestrator(cfg *config.Configuration, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		config: cfg,
		logger: logging.NewNop(),
		out:    output.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.reader = metadata.NewReader(o.logger)
	o.validator = textcheck.New(textcheck.WithExtraDenied(cfg.ExtraDeniedRunes()...))
	o.classifier = classifier.New(o.validator)
	return o
}

// NewOrchestratorFromPath creates a new Orchestrator by loading configuration from a file.
func NewOrchestratorFromPath(configPath string, opts ...Option) (*Orchestrator, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewOrchestrator(cfg, opts...), nil
}

// Config returns the configuration the orchestrator runs with.
func (o *Orchestrator) Config() *config.Configuration {
	return o.config
}

// Logger returns the orchestrator's structured logger.
func (o *Orchestrator) Logger() *slog.Logger {
	return o.logger
}

// CopyOptions controls the copying operations.
type CopyOptions struct {
	// DestDir overrides the configured destination when set.
	DestDir string
	// DryRun plans the copies without touching the filesystem.
	DryRun bool
}

// createReport opens a report file for writing, creating its directory.
func createReport(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create report directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create report %s: %w", path, err)
	}
	return f, nil
}

// startJournal opens the copy journal in dir and starts a run for op.
func (o *Orchestrator) startJournal(dir, op string) (*audit.AuditWriter, error) {
	j, err := audit.NewAuditWriter(dir)
	if err != nil {
		return nil, err
	}
	runID, err := j.StartRun(op)
	if err != nil {
		j.Close()
		return nil, err
	}
	o.logger.Debug("journal run started", "journal", j.Path(), "journal_run", runID)
	return j, nil
}

// finishJournal ends the journal run with a status derived from runErr.
func finishJournal(j *audit.AuditWriter, runErr error) error {
	status := audit.RunStatusCompleted
	switch {
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		status = audit.RunStatusInterrupted
	case runErr != nil:
		status = audit.RunStatusFailed
	}
	return errors.Join(j.EndRun(status), j.Close())
}

// canceled returns ctx.Err() wrapped with the operation name, or nil.
func canceled(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s interrupted: %w", op, err)
	}
	return nil
}
