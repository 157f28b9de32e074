// Package watch keeps the photo index live after a scan completes by
// watching the library for filesystem changes.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jamesainslie/timescape/pkg/timescape/events"
	"github.com/jamesainslie/timescape/pkg/timescape/index"
	"github.com/jamesainslie/timescape/pkg/timescape/logging"
	"github.com/jamesainslie/timescape/pkg/timescape/scan"
	"github.com/jamesainslie/timescape/pkg/timescape/types"
)

// Watcher watches library directories and feeds new photos into the index.
type Watcher struct {
	ix      *index.DateIndex
	bc      *events.Broadcaster
	opts    scan.Options
	watcher *fsnotify.Watcher
	paths   map[string]bool
	mu      sync.Mutex
	closed  bool
}

// New creates a Watcher inserting into ix. The broadcaster may be nil.
func New(ix *index.DateIndex, bc *events.Broadcaster, opts scan.Options) (*Watcher, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		ix:      ix,
		bc:      bc,
		opts:    opts,
		watcher: fsw,
		paths:   make(map[string]bool),
	}, nil
}

// Watch starts watching a library root recursively. Watches are added to
// the root and every subdirectory; symlinks are not followed to avoid
// loops.
func (w *Watcher) Watch(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	info, err := os.Lstat(absRoot)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil // Only watch directories
	}

	return filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if d.IsDir() {
			return w.addWatch(path)
		}

		return nil
	})
}

// addWatch adds a single directory to the watch list.
func (w *Watcher) addWatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.paths[path] {
		return nil
	}

	if err := w.watcher.Add(path); err != nil {
		logging.Get("watch").Warn("failed to add watch", "path", path, "error", err)
		return err
	}

	w.paths[path] = true
	return nil
}

// Run starts the event loop. It blocks until the context is cancelled or
// the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get("watch").Error("watcher error", "error", err)
		}
	}
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	switch {
	case event.Op&fsnotify.Create != 0:
		w.handleCreate(event.Name)
	case event.Op&fsnotify.Write != 0:
		w.handleWrite(event.Name)
	case event.Op&fsnotify.Remove != 0:
		w.handleRemove(event.Name)
	case event.Op&fsnotify.Rename != 0:
		// Rename is a remove here; the new name triggers its own create.
		w.handleRemove(event.Name)
	}
}

// handleCreate indexes a new photo, or extends the watch into a new
// directory tree.
func (w *Watcher) handleCreate(path string) {
	info, err := os.Lstat(path)
	if err != nil {
		return // Gone already
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		return
	}

	if info.IsDir() {
		_ = w.addWatch(path)

		// Subdirectories created together with the parent arrive as a
		// single event; walk to pick them up.
		_ = filepath.WalkDir(path, func(subpath string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return nil //nolint:nilerr // Skip entries with errors
			}
			if d.Type()&fs.ModeSymlink != 0 {
				return nil
			}
			if d.IsDir() && subpath != path {
				_ = w.addWatch(subpath)
			}
			return nil
		})
		return
	}

	w.indexFile(path, info)
}

// handleWrite re-extracts the capture time for a modified photo.
func (w *Watcher) handleWrite(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		return
	}

	// Drop the stale entry first so a changed EXIF date cannot leave the
	// photo indexed twice.
	w.ix.RemoveByPath(path)
	w.indexFile(path, info)
}

// handleRemove drops the photo from the index and any watch on the path.
func (w *Watcher) handleRemove(path string) {
	w.mu.Lock()
	if w.paths[path] {
		_ = w.watcher.Remove(path)
		delete(w.paths, path)
	}
	for childPath := range w.paths {
		if isSubPath(childPath, path) {
			_ = w.watcher.Remove(childPath)
			delete(w.paths, childPath)
		}
	}
	w.mu.Unlock()

	removed := w.ix.RemoveByPath(path)
	// A removed directory yields no per-file events, so prune everything
	// that was indexed beneath it as well.
	removed += w.ix.RemoveByPrefix(path + string(os.PathSeparator))
	if removed > 0 {
		logging.Get("watch").Debug("removed from index", "path", path, "count", removed)
	}
}

// indexFile extracts a capture time and inserts the photo.
func (w *Watcher) indexFile(path string, info os.FileInfo) {
	if !w.opts.Matches(path) {
		return
	}

	taken, err := w.opts.Timestamp(path, info)
	if err != nil {
		logging.Get("watch").Debug("no capture time", "path", path, "error", err)
		return
	}

	photo := types.Photo{Path: path, Taken: taken}
	w.ix.Insert(photo)
	logging.Get("watch").Info("indexed new photo", "path", path, "taken", taken)
	if w.bc != nil {
		w.bc.ItemFound(photo)
	}
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true
	w.paths = make(map[string]bool)
	return w.watcher.Close()
}

// isSubPath checks if path is under parent directory.
func isSubPath(path, parent string) bool {
	return len(path) > len(parent) && path[:len(parent)+1] == parent+string(filepath.Separator)
}
