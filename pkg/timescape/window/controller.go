// Package window maintains the materialized window of timeline buckets
// around a moving pivot. The controller decides when a zoom change forces a
// full rebuild, when panning triggers an incremental edge refill, and how
// the view re-anchors after a scan delivers a new reference date.
package window

import (
	"context"
	"sync"
	"time"

	"github.com/jamesainslie/timescape/pkg/timescape/bucket"
	"github.com/jamesainslie/timescape/pkg/timescape/events"
	"github.com/jamesainslie/timescape/pkg/timescape/index"
	"github.com/jamesainslie/timescape/pkg/timescape/logging"
	"github.com/jamesainslie/timescape/pkg/timescape/types"
)

// DefaultBufferSize is the number of buckets built on each side of the
// pivot bucket.
const DefaultBufferSize = 3

// Item width boundaries, in display units. Accumulated zoom deltas crossing
// a boundary trigger a zoom level transition; the width then resets to the
// opposite boundary of the new level.
const (
	minItemWidth = 48.0
	maxItemWidth = 192.0
	widthStep    = 16.0
)

// refillThreshold is how far, in buckets, the pivot may drift from the
// window center before an edge refill is requested.
const refillThreshold = 1

// State identifies what the controller is currently doing.
type State int

// Controller states.
const (
	StateIdle State = iota
	StateZoomTransition
	StateEdgeRefill
	StateJumpPending
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateZoomTransition:
		return "zoom-transition"
	case StateEdgeRefill:
		return "edge-refill"
	case StateJumpPending:
		return "jump-pending"
	default:
		return "unknown"
	}
}

// Controller owns the window of buckets. All mutation happens under one
// mutex; consumers receive copies and report pivot, zoom and jump
// satisfaction back through the public methods.
type Controller struct {
	mu     sync.Mutex
	ix     *index.DateIndex
	logger *logging.Logger

	level     types.ZoomLevel
	pivot     time.Time
	buffer    int
	window    []types.Bucket
	jump      types.JumpRequest
	itemWidth float64
	state     State

	refill  Coalescer
	refresh Coalescer
}

// NewController creates a controller over the given index.
func NewController(ix *index.DateIndex, buffer int) *Controller {
	if buffer < 1 {
		buffer = DefaultBufferSize
	}
	return &Controller{
		ix:        ix,
		logger:    logging.Get("window"),
		level:     types.ZoomYears,
		buffer:    buffer,
		itemWidth: minItemWidth,
	}
}

func (c *Controller) lock()   { c.mu.Lock() }
func (c *Controller) unlock() { c.mu.Unlock() }

// Activate builds the initial window: pivot is the earliest indexed photo,
// or now when the index is empty, at the widest zoom level, with a pending
// jump to the pivot.
func (c *Controller) Activate() {
	c.lock()
	defer c.unlock()

	pivot, ok := c.ix.Min()
	if !ok {
		pivot = time.Now()
	}
	c.rebuildLocked(types.ZoomYears, pivot)
}

// SetView jumps the window to an explicit zoom level and pivot, as when
// the user picks a date to open the timeline at.
func (c *Controller) SetView(level types.ZoomLevel, pivot time.Time) {
	c.lock()
	defer c.unlock()
	c.rebuildLocked(level, pivot)
}

// OnScanCompleted re-anchors the window on the scan's earliest photo. This
// is the highest priority transition: it discards the current window
// regardless of state.
func (c *Controller) OnScanCompleted(earliest *types.Photo) {
	c.lock()
	defer c.unlock()

	pivot := time.Now()
	if earliest != nil {
		pivot = earliest.Taken
	}
	c.logger.Info("re-anchoring after scan", "pivot", pivot)
	c.rebuildLocked(types.ZoomYears, pivot)
}

// rebuildLocked replaces the window entirely, centered on pivot at the
// given level, and issues a jump request. Caller holds the lock.
func (c *Controller) rebuildLocked(level types.ZoomLevel, pivot time.Time) {
	c.level = level
	c.pivot = pivot
	c.window = bucket.BuildWindow(level, pivot, c.buffer, types.Both, c.ix)
	c.jump = types.JumpRequest{Active: true, Target: pivot}
	c.state = StateJumpPending
}

// OnZoomDelta accumulates wheel input into the item width. Crossing the max
// boundary zooms in one level; crossing the min boundary zooms out. The
// transition rebuilds the window around the current pivot and resets the
// width to the opposite boundary. Deltas arriving while a jump from a prior
// transition is unsatisfied are rejected so rapid wheel input cannot thrash.
func (c *Controller) OnZoomDelta(delta int) {
	c.lock()
	defer c.unlock()

	if c.jump.Active {
		c.logger.Debug("zoom delta rejected, transition pending")
		return
	}

	c.itemWidth += float64(delta) * widthStep

	switch {
	case c.itemWidth > maxItemWidth:
		if c.level == types.ZoomSeconds {
			c.itemWidth = maxItemWidth
			return
		}
		c.logger.Info("zooming in", "from", c.level.String(), "to", c.level.In().String(), "pivot", c.pivot)
		c.rebuildLocked(c.level.In(), c.pivot)
		c.state = StateZoomTransition
		c.itemWidth = minItemWidth

	case c.itemWidth < minItemWidth:
		if c.level == types.ZoomYears {
			c.itemWidth = minItemWidth
			return
		}
		c.logger.Info("zooming out", "from", c.level.String(), "to", c.level.Out().String(), "pivot", c.pivot)
		c.rebuildLocked(c.level.Out(), c.pivot)
		c.state = StateZoomTransition
		c.itemWidth = maxItemWidth
	}
}

// OnPan moves the pivot. When the pivot's bucket drifts past the refill
// threshold from the window center, buckets are fetched on the deficient
// end and an equal count trimmed from the other end; the window is never
// rebuilt wholesale for a pan. A pivot outside the window abandons any
// pending jump and clamps to the nearest edge.
func (c *Controller) OnPan(pivot time.Time) {
	c.lock()

	if len(c.window) == 0 {
		c.pivot = pivot
		c.unlock()
		return
	}

	idx := c.bucketIndexLocked(pivot)
	if idx < 0 {
		// Pivot fell outside every bucket we hold: abandon the jump and
		// stay at the nearest edge.
		if c.jump.Active {
			c.logger.Warn("jump target outside window, abandoning", "target", c.jump.Target)
			c.jump = types.JumpRequest{}
		}
		if pivot.Before(c.window[0].Key) {
			c.pivot = c.window[0].Key
		} else {
			c.pivot = c.window[len(c.window)-1].Key
		}
		c.state = StateIdle
		c.unlock()
		return
	}

	c.pivot = pivot
	offset := idx - len(c.window)/2
	drift := offset
	if drift < 0 {
		drift = -drift
	}
	if drift <= refillThreshold {
		c.state = StateIdle
		c.unlock()
		return
	}

	c.state = StateEdgeRefill
	c.unlock()

	// Coalesced so only one refill is in flight; a pan arriving mid-refill
	// collapses into a single trailing request.
	c.refill.Do(func() { c.refillEdge(offset) })
}

// refillEdge extends the window by n buckets on the deficient end and trims
// the same count from the opposite end, preserving contiguity.
func (c *Controller) refillEdge(offset int) {
	c.lock()
	defer c.unlock()

	if len(c.window) == 0 {
		c.state = StateIdle
		return
	}

	n := offset
	if n < 0 {
		n = -n
	}

	if offset > 0 {
		anchor := c.window[len(c.window)-1].Key
		fresh := bucket.BuildWindow(c.level, anchor, n, types.Post, c.ix)
		c.window = append(c.window[len(fresh):], fresh...)
	} else {
		anchor := c.window[0].Key
		fresh := bucket.BuildWindow(c.level, anchor, n, types.Pre, c.ix)
		c.window = append(fresh, c.window[:len(c.window)-len(fresh)]...)
	}
	c.logger.Debug("edge refill", "offset", offset, "buckets", n)
	c.state = StateIdle
}

// Refresh rebuilds the current window contents in place, keeping pivot,
// level and any pending jump. Used while a scan is still populating the
// index. Overlapping refreshes coalesce.
func (c *Controller) Refresh() {
	c.refresh.Do(func() {
		c.lock()
		defer c.unlock()

		if len(c.window) == 0 {
			return
		}
		start := c.window[0].Key
		// Query to just inside the last bucket's end so photos landing
		// anywhere in its span are picked up, without pulling in the
		// following bucket.
		end := c.window[len(c.window)-1].End().Add(-time.Nanosecond)
		c.window = bucket.Build(c.level, start, end, c.ix)
	})
}

// Run consumes scan events until the context is cancelled or the
// subscription closes. Window mutation stays on this goroutine for scan
// driven transitions, keeping the controller authoritative.
func (c *Controller) Run(ctx context.Context, sub *events.Subscriber) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events:
			if !ok {
				return
			}
			switch ev.Type {
			case events.EventItemFound:
				c.Refresh()
			case events.EventScanCompleted:
				c.OnScanCompleted(ev.Earliest)
			}
		}
	}
}

// Window returns a copy of the current bucket window, ascending and
// contiguous by key.
func (c *Controller) Window() []types.Bucket {
	c.lock()
	defer c.unlock()

	out := make([]types.Bucket, len(c.window))
	copy(out, c.window)
	return out
}

// Level returns the active zoom level.
func (c *Controller) Level() types.ZoomLevel {
	c.lock()
	defer c.unlock()
	return c.level
}

// Pivot returns the current pivot date.
func (c *Controller) Pivot() time.Time {
	c.lock()
	defer c.unlock()
	return c.pivot
}

// State returns what the controller last did.
func (c *Controller) State() State {
	c.lock()
	defer c.unlock()
	return c.state
}

// Jump returns the pending jump request, if any.
func (c *Controller) Jump() types.JumpRequest {
	c.lock()
	defer c.unlock()
	return c.jump
}

// CompleteJump is called by the consumer once it has scrolled to the jump
// target; it clears the request.
func (c *Controller) CompleteJump() {
	c.lock()
	defer c.unlock()

	c.jump = types.JumpRequest{}
	if c.state == StateJumpPending || c.state == StateZoomTransition {
		c.state = StateIdle
	}
}

// bucketIndexLocked returns the index of the bucket containing t, or -1.
// Caller holds the lock.
func (c *Controller) bucketIndexLocked(t time.Time) int {
	for i, b := range c.window {
		if !t.Before(b.Key) && t.Before(b.End()) {
			return i
		}
	}
	return -1
}
