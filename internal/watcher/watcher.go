// Package watcher keeps index.db in step with tag changes made outside
// xatag.
//
// Setting or removing an extended attribute changes the file's inode, which
// fsnotify reports as a Chmod event. Files are re-read after a short
// debounce so a burst of attribute writes is indexed once.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ohspite/xatag/internal/logging"
	"github.com/ohspite/xatag/internal/paths"
	"github.com/ohspite/xatag/internal/tags"
)

// Index is the part of index.db the watcher writes to.
type Index interface {
	Put(path string, d tags.Dict) error
	Remove(path string) error
}

// Watcher monitors directory trees and reindexes files whose tags change.
type Watcher struct {
	roots  []string
	index  Index
	read   func(path string) (tags.Dict, error)
	ignore map[string]bool

	debounceDelay time.Duration
	log           *logging.Logger
	now           func() time.Time

	fsWatcher *fsnotify.Watcher
	pending   map[string]time.Time
	mu        sync.Mutex

	onReindex func(path string, err error)
}

// Config holds configuration options for the Watcher.
type Config struct {
	Roots []string
	Index Index
	// Read returns the current tags of a file.
	Read func(path string) (tags.Dict, error)
	// Ignore lists directories that are never watched, such as the config
	// dir holding index.db.
	Ignore        []string
	DebounceDelay time.Duration // Default: 100ms
	Logger        *logging.Logger
	OnReindex     func(path string, err error)
}

// New creates a new Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Roots) == 0 {
		return nil, fmt.Errorf("at least one directory is required")
	}
	if cfg.Index == nil {
		return nil, fmt.Errorf("index is required")
	}
	if cfg.Read == nil {
		return nil, fmt.Errorf("read function is required")
	}

	debounce := cfg.DebounceDelay
	if debounce == 0 {
		debounce = 100 * time.Millisecond
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}

	w := &Watcher{
		index:         cfg.Index,
		read:          cfg.Read,
		ignore:        map[string]bool{".git": true},
		debounceDelay: debounce,
		log:           log,
		now:           time.Now,
		pending:       make(map[string]time.Time),
		onReindex:     cfg.OnReindex,
	}
	for _, r := range cfg.Roots {
		w.roots = append(w.roots, paths.Canonical(r))
	}
	for _, dir := range cfg.Ignore {
		w.ignore[paths.Canonical(dir)] = true
	}
	return w, nil
}

// Start watches the roots until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.fsWatcher.Close()

	for _, root := range w.roots {
		if err := w.addWatchRecursive(root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
		w.log.Debugf("watching %s", root)
	}

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.Debugf("watcher error: %v", err)
		}
	}
}

// ReindexFile reads the tags of path and stores them. A file that has
// gone is dropped from the index.
func (w *Watcher) ReindexFile(path string) error {
	path = paths.Canonical(path)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return w.index.Remove(path)
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return nil
	}

	d, err := w.read(path)
	if err != nil {
		return err
	}
	return w.index.Put(path, d)
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.shouldIgnore(path) {
		return
	}
	w.log.Debugf("event: %s %s", event.Op, path)

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		if err := w.index.Remove(paths.Canonical(path)); err != nil {
			w.log.Debugf("failed to remove %s from index: %v", path, err)
		}
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if w.fsWatcher != nil {
				_ = w.addWatchRecursive(path)
			}
			return
		}
		w.scheduleReindex(path)
	case event.Has(fsnotify.Chmod), event.Has(fsnotify.Write):
		w.scheduleReindex(path)
	}
}

func (w *Watcher) scheduleReindex(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = w.now()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending()
		}
	}
}

// processPending reindexes files whose last event is older than the
// debounce delay.
func (w *Watcher) processPending() {
	w.mu.Lock()
	now := w.now()
	var ready []string
	for path, scheduledAt := range w.pending {
		if now.Sub(scheduledAt) >= w.debounceDelay {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		err := w.ReindexFile(path)
		if w.onReindex != nil {
			w.onReindex(path, err)
		}
		if err != nil {
			w.log.Debugf("failed to reindex %s: %v", path, err)
		}
	}
}

func (w *Watcher) addWatchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			w.log.Debugf("failed to watch %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) shouldIgnore(path string) bool {
	path = paths.Canonical(path)
	for dir := path; ; dir = filepath.Dir(dir) {
		if w.ignore[dir] || w.ignore[filepath.Base(dir)] {
			return true
		}
		if parent := filepath.Dir(dir); parent == dir {
			return false
		}
	}
}
