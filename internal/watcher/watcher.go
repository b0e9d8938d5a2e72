// Package watcher re-runs a scan whenever the audio files on a mounted
// device change.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"podscan/internal/scanner"
)

// WatchConfig contains watcher settings.
type WatchConfig struct {
	Root            string        // music root holding the F* folders
	Debounce        time.Duration // quiet period before a run (default: 2s)
	StableThreshold time.Duration // file size stability threshold; 0 disables
	// InitialRun runs once right after the watch is set up.
	InitialRun bool
}

// DefaultWatchConfig returns a WatchConfig for root with default timings.
func DefaultWatchConfig(root string) *WatchConfig {
	return &WatchConfig{
		Root:            root,
		Debounce:        2 * time.Second,
		StableThreshold: time.Second,
	}
}

// WatchSummary contains stats from the watch session.
type WatchSummary struct {
	Runs          int
	FailedRuns    int
	EventsSeen    int
	EventsIgnored int
	FoldersAdded  int
	Duration      time.Duration
}

// RunFunc is the scan re-run after changes settle.
type RunFunc func(ctx context.Context) error

// Watcher monitors the music root and its F* folders.
type Watcher struct {
	config    *WatchConfig
	run       RunFunc
	logger    *slog.Logger
	filter    *FileFilter
	debouncer *Debouncer
	stability *StabilityChecker
	fsWatcher *fsnotify.Watcher
	trigger   chan struct{}
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startTime time.Time

	// Statistics and changed paths since the last run
	mu      sync.Mutex
	changed map[string]struct{}
	stats   WatchSummary
}

// New creates a new Watcher. If config is nil the defaults for the current
// directory are used. run is invoked once per settled burst of changes;
// runs never overlap.
func New(config *WatchConfig, run RunFunc, logger *slog.Logger) *Watcher {
	if config == nil {
		config = DefaultWatchConfig(".")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w := &Watcher{
		config:    config,
		run:       run,
		logger:    logger,
		filter:    NewFileFilter(config.Root),
		stability: NewStabilityChecker(config.StableThreshold),
		// One buffered slot: a change during a run queues exactly one more.
		trigger: make(chan struct{}, 1),
		changed: make(map[string]struct{}),
	}
	w.debouncer = NewDebouncer(config.Debounce, w.requestRun)
	return w
}

// Start begins watching the root and every F* folder below it. It returns
// an error if the root is inaccessible or the watch cannot be set up. The
// watcher runs until Stop is called or ctx is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := scanner.CheckRoot(w.config.Root); err != nil {
		return err
	}
	folders, err := scanner.MusicFolders(w.config.Root)
	if err != nil {
		return err
	}

	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	for _, dir := range append([]string{w.config.Root}, folders...) {
		if err := w.fsWatcher.Add(dir); err != nil {
			w.fsWatcher.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.logger.Info("watching music root",
		"root", w.filter.Root(),
		"folders", len(folders),
		"debounce", w.debouncer.Delay(),
		"stable_threshold", w.stability.Threshold(),
	)

	ctx, w.cancel = context.WithCancel(ctx)
	w.startTime = time.Now()

	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.processRuns(ctx)

	if w.config.InitialRun {
		w.requestRun()
	}
	return nil
}

// Stop shuts the watcher down, waiting for a run in progress, and returns
// a summary of the session.
func (w *Watcher) Stop() *WatchSummary {
	if w.cancel != nil {
		w.cancel()
	}
	w.debouncer.Cancel()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
	}
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	summary := w.stats
	if !w.startTime.IsZero() {
		summary.Duration = time.Since(w.startTime)
	}
	return &summary
}

// Run starts the watcher and blocks until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) (*WatchSummary, error) {
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	<-ctx.Done()
	return w.Stop(), nil
}

// Summary returns the statistics collected so far.
func (w *Watcher) Summary() WatchSummary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// processEvents handles file system events from fsnotify.
func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// handleEvent filters one event and schedules a run for relevant changes.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	w.mu.Lock()
	w.stats.EventsSeen++
	w.mu.Unlock()

	if event.Has(fsnotify.Create) && w.filter.IsMusicFolder(event.Name) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addFolder(event.Name)
			w.debouncer.Trigger()
			return
		}
	}

	if event.Op == fsnotify.Chmod || w.filter.ShouldIgnore(event.Name) {
		w.mu.Lock()
		w.stats.EventsIgnored++
		w.mu.Unlock()
		return
	}

	w.logger.Debug("audio file changed", "path", event.Name, "op", event.Op.String())
	w.mu.Lock()
	w.changed[event.Name] = struct{}{}
	w.mu.Unlock()
	w.debouncer.Trigger()
}

// addFolder starts watching a newly created F* folder.
func (w *Watcher) addFolder(dir string) {
	if err := w.fsWatcher.Add(dir); err != nil {
		w.logger.Warn("cannot watch new folder", "folder", dir, "error", err)
		return
	}
	w.mu.Lock()
	w.stats.FoldersAdded++
	w.mu.Unlock()
	w.logger.Info("watching new folder", "folder", filepath.Base(dir))
}

// requestRun queues a run unless one is already queued.
func (w *Watcher) requestRun() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// processRuns executes queued runs one at a time.
func (w *Watcher) processRuns(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.trigger:
			w.runOnce(ctx)
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	paths := w.takeChanged()
	if err := w.stability.WaitAll(ctx, paths); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Warn("changed files did not settle", "error", err)
	}

	err := w.run(ctx)
	w.mu.Lock()
	w.stats.Runs++
	if err != nil && !errors.Is(err, context.Canceled) {
		w.stats.FailedRuns++
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("run failed", "error", err)
		return
	}
	w.logger.Info("run finished", "changed_files", len(paths))
}

// takeChanged returns and clears the paths changed since the last run.
func (w *Watcher) takeChanged() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.changed))
	for p := range w.changed {
		paths = append(paths, p)
	}
	clear(w.changed)
	sort.Strings(paths)
	return paths
}

// Config returns the current watcher configuration.
func (w *Watcher) Config() *WatchConfig {
	return w.config
}
