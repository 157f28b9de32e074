// Package index provides the date-ordered photo index backing the timeline.
// It is safe under a single writer (the scan) and many concurrent readers
// (bucketing queries); readers receive copies, never internal storage.
package index

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jamesainslie/timescape/pkg/timescape/types"
)

// DateIndex stores photos in ascending capture-time order. Insertion uses a
// binary search for the insertion point; scans are append-mostly so the O(n)
// shift is acceptable. All access goes through one mutex, and range reads
// copy matched items out rather than holding references across the lock.
type DateIndex struct {
	mu     sync.Mutex
	photos []types.Photo
}

// New creates an empty index.
func New() *DateIndex {
	return &DateIndex{}
}

// Insert adds a photo, maintaining ascending order by capture time.
func (ix *DateIndex) Insert(p types.Photo) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	i := sort.Search(len(ix.photos), func(i int) bool {
		return ix.photos[i].Taken.After(p.Taken)
	})
	ix.photos = append(ix.photos, types.Photo{})
	copy(ix.photos[i+1:], ix.photos[i:])
	ix.photos[i] = p
}

// Clear empties the index. Called before a new scan repopulates it.
func (ix *DateIndex) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.photos = nil
}

// RemoveByPath deletes every photo whose Path matches. Used by the
// library watcher; scans rebuild from empty and never need it.
func (ix *DateIndex) RemoveByPath(path string) int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	kept := ix.photos[:0]
	for _, p := range ix.photos {
		if p.Path != path {
			kept = append(kept, p)
		}
	}
	removed := len(ix.photos) - len(kept)
	ix.photos = kept
	return removed
}

// RemoveByPrefix deletes every photo whose Path starts with prefix. Used
// when a watched directory disappears and its contents generate no
// per-file events.
func (ix *DateIndex) RemoveByPrefix(prefix string) int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	kept := ix.photos[:0]
	for _, p := range ix.photos {
		if !strings.HasPrefix(p.Path, prefix) {
			kept = append(kept, p)
		}
	}
	removed := len(ix.photos) - len(kept)
	ix.photos = kept
	return removed
}

// Range returns photos with start <= Taken <= end in ascending order.
// Both bounds are inclusive so callers can query aligned calendar spans
// without losing boundary items. An empty index yields an empty result.
func (ix *DateIndex) Range(start, end time.Time) []types.Photo {
	if start.After(end) {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	lo := sort.Search(len(ix.photos), func(i int) bool {
		return !ix.photos[i].Taken.Before(start)
	})
	hi := sort.Search(len(ix.photos), func(i int) bool {
		return ix.photos[i].Taken.After(end)
	})
	if lo >= hi {
		return nil
	}

	out := make([]types.Photo, hi-lo)
	copy(out, ix.photos[lo:hi])
	return out
}

// Min returns the earliest capture time in the index.
// The second return is false when the index is empty.
func (ix *DateIndex) Min() (time.Time, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if len(ix.photos) == 0 {
		return time.Time{}, false
	}
	return ix.photos[0].Taken, true
}

// Max returns the latest capture time in the index.
// The second return is false when the index is empty.
func (ix *DateIndex) Max() (time.Time, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if len(ix.photos) == 0 {
		return time.Time{}, false
	}
	return ix.photos[len(ix.photos)-1].Taken, true
}

// Earliest returns a copy of the earliest photo, or false when empty.
func (ix *DateIndex) Earliest() (types.Photo, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if len(ix.photos) == 0 {
		return types.Photo{}, false
	}
	return ix.photos[0], true
}

// Len returns the number of indexed photos.
func (ix *DateIndex) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.photos)
}
