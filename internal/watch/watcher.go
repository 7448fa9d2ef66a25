// Package watch rebuilds study reports when their source files change.
// Bursts of filesystem events are debounced per study so one save in an
// editor triggers exactly one rebuild.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/doc-builder/internal/batch"
	"git.home.luguber.info/inful/doc-builder/internal/config"
	"git.home.luguber.info/inful/doc-builder/internal/logfields"
)

// Config tunes the watch loop.
type Config struct {
	// QuietWindow is how long a study must stay quiet before rebuilding.
	QuietWindow time.Duration
	// InitialBuild runs a full batch before watching.
	InitialBuild bool
}

const defaultQuietWindow = 500 * time.Millisecond

// Watcher monitors a studies root and regenerates changed studies.
type Watcher struct {
	root    string
	runner  *batch.Runner
	watcher *fsnotify.Watcher
	quiet   time.Duration
	initial bool
	// runID groups this watch session's ledger entries.
	runID string

	// pending maps study directory to the time of its last event.
	pending map[string]time.Time
}

// New creates a Watcher over the studies root.
func New(root string, runner *batch.Runner, cfg Config) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve studies root: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	quiet := cfg.QuietWindow
	if quiet <= 0 {
		quiet = defaultQuietWindow
	}
	return &Watcher{
		root:    absRoot,
		runner:  runner,
		watcher: fsw,
		quiet:   quiet,
		initial: cfg.InitialBuild,
		runID:   uuid.NewString(),
		pending: make(map[string]time.Time),
	}, nil
}

// Run watches until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	slog.Info("Watching studies", logfields.Path(w.root))

	if w.initial {
		if _, err := w.runner.Run(ctx, w.root); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(w.quiet / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		case <-ticker.C:
			w.rebuildQuiet(ctx)
		}
	}
}

// addRecursive watches root and every directory below it. fsnotify does
// not recurse on its own.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if addErr := w.watcher.Add(path); addErr != nil {
			return fmt.Errorf("watch %s: %w", path, addErr)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	// New study directories must be watched as they appear.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
			}
		}
	}
	study, ok := w.studyDir(event.Name)
	if !ok {
		return
	}
	slog.Debug("Change detected",
		logfields.Study(filepath.Base(study)),
		logfields.Path(event.Name))
	w.pending[study] = time.Now()
}

// studyDir maps an event path to the study directory that owns it: the
// first path element under the root. Paths outside any study, and studies
// without a report.json, are ignored.
func (w *Watcher) studyDir(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	dir := filepath.Join(w.root, parts[0])
	if _, err := os.Stat(filepath.Join(dir, config.ReportFileName)); err != nil {
		return "", false
	}
	return dir, true
}

// rebuildQuiet regenerates every pending study whose quiet window has
// elapsed. Rebuilds run inline; new events queue up in the meantime.
func (w *Watcher) rebuildQuiet(ctx context.Context) {
	now := time.Now()
	for dir, last := range w.pending {
		if now.Sub(last) < w.quiet {
			continue
		}
		delete(w.pending, dir)
		slog.Info("Rebuilding study", logfields.Study(filepath.Base(dir)))
		w.runner.RunStudy(ctx, w.runID, dir)
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}
