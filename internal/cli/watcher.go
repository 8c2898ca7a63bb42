package cli

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/parser"
	"github.com/toyz/defn/internal/utils"
)

// DefaultDebounce is how long the watcher waits for a burst of events to settle
const DefaultDebounce = 150 * time.Millisecond

// Watcher regenerates headers whenever a watched source changes
type Watcher struct {
	generator   *Generator
	patterns    []string
	diagnostics *utils.DiagnosticSystem
	reporter    *DiagnosticReporter
	debounce    time.Duration

	// regenerated is notified after every regeneration, for tests
	regenerated func(GenerationSummary, error)
}

// NewWatcher creates a watcher over the sources matched by patterns
func NewWatcher(g *Generator, patterns []string, diagnostics *utils.DiagnosticSystem, reporter *DiagnosticReporter) *Watcher {
	return &Watcher{
		generator:   g,
		patterns:    patterns,
		diagnostics: diagnostics,
		reporter:    reporter,
		debounce:    DefaultDebounce,
	}
}

// Run generates once, then keeps regenerating until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.FileSystemErrorCode, "failed to start file watcher", err)
	}
	defer func() {
		_ = fsw.Close()
	}()

	dirs, err := w.generator.Scanner().WatchDirectories(w.patterns)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			return errors.WrapFileSystemError("watch", dir, err)
		}
	}
	w.diagnostics.Info("Watching %d directories", len(dirs))

	w.regenerate(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := fsw.Add(ev.Name); err != nil {
						w.diagnostics.Warn("cannot watch %s: %v", ev.Name, err)
					}
					continue
				}
			}
			if !strings.HasSuffix(ev.Name, parser.FileExtension) {
				continue
			}

			w.generator.Forget(ev.Name)
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.removeHeader(ev.Name)
			}
			w.diagnostics.Debug("%s: %s", ev.Op, ev.Name)
			pending = true
			timer.Reset(w.debounce)

		case <-timer.C:
			if pending {
				pending = false
				w.regenerate(ctx)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.diagnostics.Warn("watch error: %v", err)
		}
	}
}

// regenerate runs the generator and reports the outcome without stopping the watch
func (w *Watcher) regenerate(ctx context.Context) {
	summary, err := w.generator.Run(ctx, w.patterns, true)
	if err != nil && ctx.Err() == nil {
		w.reporter.ReportError(err)
	} else if err == nil {
		w.reporter.ReportSuccess(summary)
	}
	if w.regenerated != nil {
		w.regenerated(summary, err)
	}
}

// removeHeader deletes the header of a source that no longer exists
func (w *Watcher) removeHeader(source string) {
	if _, err := os.Stat(source); err == nil {
		return
	}
	header := w.generator.HeaderPath(source)
	if err := os.Remove(header); err == nil {
		w.diagnostics.Info("Removed %s", header)
	}
}
