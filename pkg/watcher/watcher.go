// Package watcher reports debounced change batches for a project tree.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wouteroostervld/unitygraph/pkg/filter"
)

// DefaultDebounce is the quiet period after the last event before OnChange fires
const DefaultDebounce = time.Second

// TreeWatcher watches a directory tree for file changes. Events inside the
// debounce window are coalesced into one OnChange call.
type TreeWatcher struct {
	watcher  *fsnotify.Watcher
	root     string
	rules    *filter.Rules
	onChange func(paths []string)
	debounce time.Duration

	mu      sync.Mutex
	watched map[string]bool
	pending map[string]bool
	timer   *time.Timer
}

// Config holds watcher configuration
type Config struct {
	Root          string        // Tree to watch
	Rules         *filter.Rules // Directory and file filter, paths relative to Root
	DebounceDelay time.Duration // Delay before triggering OnChange (default: 1s)
	OnChange      func(paths []string)
}

// New creates a new tree watcher
func New(cfg *Config) (*TreeWatcher, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultDebounce
	}
	if cfg.Rules == nil {
		cfg.Rules = filter.New(nil, nil, nil, nil)
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &TreeWatcher{
		watcher:  watcher,
		root:     root,
		rules:    cfg.Rules,
		onChange: cfg.OnChange,
		debounce: cfg.DebounceDelay,
		watched:  make(map[string]bool),
		pending:  make(map[string]bool),
	}, nil
}

// WatchTree adds dir and every visitable directory below it
func (w *TreeWatcher) WatchTree(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	return filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == abs {
				return err
			}
			slog.Debug("Skipping unreadable directory", "path", p, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != abs && !w.rules.ShouldVisitDirectory(w.rel(p)) {
			return filepath.SkipDir
		}
		return w.Watch(p)
	})
}

// Watch adds a single directory to the watch list
func (w *TreeWatcher) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	if w.watched[abs] {
		return nil // Already watching
	}

	if err := w.watcher.Add(abs); err != nil {
		return fmt.Errorf("failed to watch %s: %w", abs, err)
	}

	w.watched[abs] = true
	return nil
}

// Unwatch removes a directory from the watch list
func (w *TreeWatcher) Unwatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	if !w.watched[abs] {
		return nil // Not watching
	}

	if err := w.watcher.Remove(abs); err != nil {
		return fmt.Errorf("failed to unwatch %s: %w", abs, err)
	}

	delete(w.watched, abs)
	return nil
}

// Start begins watching for file changes and blocks until ctx is done
func (w *TreeWatcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			// Log error but continue watching
			slog.Warn("Watcher error", "error", err)
		}
	}
}

func (w *TreeWatcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	rel := w.rel(event.Name)

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.rules.ShouldVisitDirectory(rel) {
				return
			}
			if err := w.WatchTree(event.Name); err != nil {
				slog.Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}
			w.schedule(rel)
			return
		}
	}

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.forget(event.Name)
	}

	if !w.rules.ShouldCollectFile(rel) {
		return
	}
	w.schedule(rel)
}

// forget drops watch bookkeeping for a removed directory. fsnotify removes
// the underlying watch itself.
func (w *TreeWatcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.watched, path)
}

// schedule records path and restarts the debounce timer
func (w *TreeWatcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *TreeWatcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]bool)
	w.timer = nil
	w.mu.Unlock()

	if len(paths) == 0 || w.onChange == nil {
		return
	}
	sort.Strings(paths)
	w.onChange(paths)
}

// rel returns p relative to the root, slash-separated
func (w *TreeWatcher) rel(p string) string {
	r, err := filepath.Rel(w.root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(r)
}

// Close stops the watcher and releases resources
func (w *TreeWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Cancel the pending flush if any
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = make(map[string]bool)

	return w.watcher.Close()
}

// Watched returns the sorted list of watched directories
func (w *TreeWatcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	paths := make([]string, 0, len(w.watched))
	for path := range w.watched {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
