package scan

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/timescape/pkg/timescape/events"
	"github.com/jamesainslie/timescape/pkg/timescape/index"
	"github.com/jamesainslie/timescape/pkg/timescape/logging"
	"github.com/jamesainslie/timescape/pkg/timescape/metacache"
	"github.com/jamesainslie/timescape/pkg/timescape/types"
)

// ScanError records a non-fatal per-item failure.
type ScanError struct {
	// Path is the file or directory path where the error occurred.
	Path string `json:"path"`

	// Error is the message describing what went wrong.
	Error string `json:"error"`
}

// Stats is a snapshot of scan progress.
type Stats struct {
	DirsWalked  int64 `json:"dirs_walked"`
	FilesWalked int64 `json:"files_walked"`
	Indexed     int64 `json:"indexed"`
	Skipped     int64 `json:"skipped"`
	CacheHits   int64 `json:"cache_hits"`
}

// Pipeline populates the date index from a filesystem walk and emits
// discovery and completion events. At most one scan is in flight; Start
// cancels and awaits a prior scan before clearing the index.
type Pipeline struct {
	ix   *index.DateIndex
	bc   *events.Broadcaster
	opts Options

	// mu guards the scan lifecycle fields.
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	dirsWalked  atomic.Int64
	filesWalked atomic.Int64
	indexed     atomic.Int64
	skipped     atomic.Int64
	cacheHits   atomic.Int64

	errorsMu sync.Mutex
	errors   []ScanError

	cacheEntriesMu sync.Mutex
	cacheEntries   map[string]*metacache.Entry
}

// New creates a pipeline feeding the given index and broadcaster.
func New(ix *index.DateIndex, bc *events.Broadcaster, opts Options) *Pipeline {
	_ = opts.Validate()
	return &Pipeline{ix: ix, bc: bc, opts: opts}
}

// Start begins a background scan of root. Any prior in-flight scan is
// cancelled and awaited first, then the index is cleared so two scans never
// race on it. recursive=false limits the walk to root itself; otherwise
// maxDepth bounds recursion depth below root (negative means unbounded).
func (p *Pipeline) Start(ctx context.Context, root string, recursive bool, maxDepth int) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return os.ErrInvalid
	}

	if !recursive {
		maxDepth = 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Supersede a prior scan: request cancellation and wait for the walk
	// to observe it before touching the index.
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}

	scanCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	p.ix.Clear()
	p.resetStats()

	go p.run(scanCtx, done, absRoot, maxDepth)
	return nil
}

// Stop cancels the in-flight scan, if any, and waits for it to finish.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		<-p.done
		p.cancel = nil
		p.done = nil
	}
}

// Wait blocks until the current scan finishes or is cancelled.
func (p *Pipeline) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Stats returns a snapshot of scan progress.
func (p *Pipeline) Stats() Stats {
	return Stats{
		DirsWalked:  p.dirsWalked.Load(),
		FilesWalked: p.filesWalked.Load(),
		Indexed:     p.indexed.Load(),
		Skipped:     p.skipped.Load(),
		CacheHits:   p.cacheHits.Load(),
	}
}

// Errors returns the per-item errors collected during the last scan.
func (p *Pipeline) Errors() []ScanError {
	p.errorsMu.Lock()
	defer p.errorsMu.Unlock()

	out := make([]ScanError, len(p.errors))
	copy(out, p.errors)
	return out
}

func (p *Pipeline) resetStats() {
	p.dirsWalked.Store(0)
	p.filesWalked.Store(0)
	p.indexed.Store(0)
	p.skipped.Store(0)
	p.cacheHits.Store(0)

	p.errorsMu.Lock()
	p.errors = nil
	p.errorsMu.Unlock()

	p.cacheEntriesMu.Lock()
	if p.opts.Cache != nil {
		p.cacheEntries = make(map[string]*metacache.Entry)
	}
	p.cacheEntriesMu.Unlock()
}

// run executes the walk and emits the completion event. It always closes
// done so a superseding scan can proceed.
func (p *Pipeline) run(ctx context.Context, done chan struct{}, root string, maxDepth int) {
	defer close(done)

	logger := logging.Get("scan")
	start := time.Now()
	logger.Info("scan started", "root", root, "max_depth", maxDepth)

	p.executeWalk(ctx, root, maxDepth)
	p.flushCacheEntries()

	stats := p.Stats()
	logger.Info("scan finished",
		"root", root,
		"indexed", stats.Indexed,
		"skipped", stats.Skipped,
		"cache_hits", stats.CacheHits,
		"elapsed", time.Since(start),
		"cancelled", ctx.Err() != nil)

	// Completion carries the earliest photo so the controller can pick an
	// initial pivot, or nil when nothing was indexed.
	if earliest, ok := p.ix.Earliest(); ok {
		p.bc.ScanCompleted(&earliest)
	} else {
		p.bc.ScanCompleted(nil)
	}
}

// executeWalk runs fastwalk over root with cooperative cancellation.
func (p *Pipeline) executeWalk(ctx context.Context, root string, maxDepth int) {
	conf := fastwalk.Config{
		Follow: false, // Don't follow symlinks.
	}

	walkDone := make(chan struct{})
	walkCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-walkCtx.Done()
		close(walkDone)
	}()

	err := fastwalk.Walk(&conf, root, p.walkCallback(walkDone, root, maxDepth))
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, fastwalk.ErrSkipFiles) {
		p.addError(root, err)
	}
}

// walkCallback returns the per-entry callback for fastwalk.Walk.
func (p *Pipeline) walkCallback(done <-chan struct{}, root string, maxDepth int) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		// Check for cancellation between items.
		select {
		case <-done:
			return fastwalk.ErrSkipFiles
		default:
		}

		// Per-item errors never abort the scan.
		if err != nil {
			p.addError(path, err)
			return nil
		}

		if d.IsDir() {
			if maxDepth >= 0 && relDepth(root, path) > maxDepth {
				return fastwalk.SkipDir
			}
			p.dirsWalked.Add(1)
			return nil
		}

		if d.Type().IsRegular() && p.opts.Matches(path) {
			p.processFile(path, d)
		}
		return nil
	}
}

// processFile extracts a timestamp for one image and inserts it.
// Extraction failures skip the file; they are logged, never fatal.
func (p *Pipeline) processFile(path string, d fs.DirEntry) {
	p.filesWalked.Add(1)

	info, err := d.Info()
	if err != nil {
		p.addError(path, err)
		p.skipped.Add(1)
		return
	}

	mtime := info.ModTime().UnixNano()
	taken, cached := p.lookupCached(path, mtime)
	if !cached {
		taken, err = p.opts.Timestamp(path, info)
		if err != nil {
			logging.Get("scan").Debug("skipping file without timestamp", "path", path, "error", err)
			p.addError(path, err)
			p.skipped.Add(1)
			return
		}
		p.addCacheEntry(path, mtime, taken)
	}

	photo := types.Photo{Path: path, Taken: taken}
	p.ix.Insert(photo)
	p.indexed.Add(1)
	p.bc.ItemFound(photo)
}

// lookupCached consults the timestamp cache, if enabled.
func (p *Pipeline) lookupCached(path string, mtime int64) (time.Time, bool) {
	if p.opts.Cache == nil {
		return time.Time{}, false
	}
	taken, ok := p.opts.Cache.Lookup(path, mtime)
	if ok {
		p.cacheHits.Add(1)
	}
	return taken, ok
}

// addCacheEntry collects an extraction result for the post-scan batch write.
func (p *Pipeline) addCacheEntry(path string, mtime int64, taken time.Time) {
	if p.opts.Cache == nil {
		return
	}
	p.cacheEntriesMu.Lock()
	p.cacheEntries[path] = &metacache.Entry{Mtime: mtime, Taken: taken.UnixNano()}
	p.cacheEntriesMu.Unlock()
}

// flushCacheEntries writes collected extraction results to the cache.
func (p *Pipeline) flushCacheEntries() {
	if p.opts.Cache == nil {
		return
	}

	p.cacheEntriesMu.Lock()
	entries := p.cacheEntries
	p.cacheEntries = nil
	p.cacheEntriesMu.Unlock()

	if len(entries) == 0 {
		return
	}
	if err := p.opts.Cache.PutBatch(entries); err != nil {
		p.addError("metacache update", err)
	}
}

// addError records a non-fatal error thread-safely.
func (p *Pipeline) addError(path string, err error) {
	p.errorsMu.Lock()
	p.errors = append(p.errors, ScanError{Path: path, Error: err.Error()})
	p.errorsMu.Unlock()
}

// relDepth returns the directory depth of path below root.
func relDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
