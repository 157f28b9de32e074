package window

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/timescape/pkg/timescape/events"
	"github.com/jamesainslie/timescape/pkg/timescape/index"
	"github.com/jamesainslie/timescape/pkg/timescape/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// zoomIn drives enough wheel notches to cross the width boundary once.
func zoomIn(c *Controller) {
	for i := 0; i < 16; i++ {
		c.OnZoomDelta(1)
	}
}

func assertContiguous(t *testing.T, buckets []types.Bucket) {
	t.Helper()
	for i := 1; i < len(buckets); i++ {
		assert.True(t, buckets[i-1].End().Equal(buckets[i].Key),
			"window not contiguous at %d", i)
	}
}

func TestActivateEmptyIndex(t *testing.T) {
	c := NewController(index.New(), 3)
	c.Activate()

	assert.Equal(t, types.ZoomYears, c.Level())
	assert.Equal(t, StateJumpPending, c.State())

	jump := c.Jump()
	assert.True(t, jump.Active)

	w := c.Window()
	require.Len(t, w, 7) // 3 decades each side of the pivot decade.
	assertContiguous(t, w)
}

func TestActivateUsesEarliestPhoto(t *testing.T) {
	ix := index.New()
	ix.Insert(types.Photo{Path: "a", Taken: date(2019, 7, 4)})
	ix.Insert(types.Photo{Path: "b", Taken: date(2023, 1, 1)})

	c := NewController(ix, 3)
	c.Activate()

	assert.Equal(t, date(2019, 7, 4), c.Pivot())
	assert.Equal(t, date(2019, 7, 4), c.Jump().Target)
}

func TestOnScanCompletedReanchors(t *testing.T) {
	c := NewController(index.New(), 3)
	c.Activate()
	c.CompleteJump()

	earliest := types.Photo{Path: "p", Taken: date(2008, 3, 15)}
	c.OnScanCompleted(&earliest)

	assert.Equal(t, date(2008, 3, 15), c.Pivot())
	assert.Equal(t, types.ZoomYears, c.Level())
	assert.True(t, c.Jump().Active)

	w := c.Window()
	require.NotEmpty(t, w)
	assert.Equal(t, date(1970, 1, 1), w[0].Key)
	assertContiguous(t, w)
}

func TestZoomTransition(t *testing.T) {
	ix := index.New()
	ix.Insert(types.Photo{Path: "p", Taken: date(2023, 1, 1)})

	c := NewController(ix, 3)
	c.Activate()
	c.CompleteJump()

	zoomIn(c)

	assert.Equal(t, types.ZoomMonths, c.Level())

	jump := c.Jump()
	assert.True(t, jump.Active)
	assert.Equal(t, date(2023, 1, 1), jump.Target)

	// Window rebuilt at the new level centered on the pivot year.
	w := c.Window()
	require.Len(t, w, 7)
	assert.Equal(t, types.YearOfMonths, w[0].Kind)
	assert.Equal(t, date(2020, 1, 1), w[0].Key)
	assert.Equal(t, date(2023, 1, 1), w[3].Key)
	assertContiguous(t, w)
}

func TestZoomRejectedWhileJumpPending(t *testing.T) {
	c := NewController(index.New(), 3)
	c.Activate()
	c.CompleteJump()

	zoomIn(c)
	require.Equal(t, types.ZoomMonths, c.Level())

	// Jump from the transition is still pending: further deltas rejected.
	zoomIn(c)
	assert.Equal(t, types.ZoomMonths, c.Level())
}

func TestZoomClampedAtWidest(t *testing.T) {
	c := NewController(index.New(), 3)
	c.Activate()
	c.CompleteJump()

	for i := 0; i < 30; i++ {
		c.OnZoomDelta(-1)
	}
	assert.Equal(t, types.ZoomYears, c.Level())
	assert.False(t, c.Jump().Active)
}

func TestZoomClampedAtNarrowest(t *testing.T) {
	c := NewController(index.New(), 3)
	c.Activate()
	c.CompleteJump()

	for c.Level() != types.ZoomSeconds {
		zoomIn(c)
		c.CompleteJump()
	}

	zoomIn(c)
	assert.Equal(t, types.ZoomSeconds, c.Level())
}

// setupMonthsWindow builds a controller at Months zoom with a window of
// year buckets centered on 2020.
func setupMonthsWindow(t *testing.T) *Controller {
	t.Helper()

	ix := index.New()
	ix.Insert(types.Photo{Path: "p", Taken: date(2020, 6, 1)})

	c := NewController(ix, 3)
	c.Activate()
	c.CompleteJump()
	zoomIn(c)
	c.CompleteJump()

	w := c.Window()
	require.Len(t, w, 7)
	require.Equal(t, date(2017, 1, 1), w[0].Key)
	require.Equal(t, date(2023, 1, 1), w[6].Key)
	return c
}

func TestEdgeRefillForward(t *testing.T) {
	c := setupMonthsWindow(t)

	c.OnPan(date(2022, 6, 1))

	w := c.Window()
	require.Len(t, w, 7, "refill must preserve total count")
	assert.Equal(t, date(2019, 1, 1), w[0].Key)
	assert.Equal(t, date(2025, 1, 1), w[6].Key)
	assertContiguous(t, w)
}

func TestEdgeRefillBackward(t *testing.T) {
	c := setupMonthsWindow(t)

	c.OnPan(date(2018, 6, 1))

	w := c.Window()
	require.Len(t, w, 7)
	assert.Equal(t, date(2015, 1, 1), w[0].Key)
	assert.Equal(t, date(2021, 1, 1), w[6].Key)
	assertContiguous(t, w)
}

func TestPanWithinThresholdNoRefill(t *testing.T) {
	c := setupMonthsWindow(t)

	// One bucket off center: inside the threshold, window untouched.
	c.OnPan(date(2021, 6, 1))

	w := c.Window()
	require.Len(t, w, 7)
	assert.Equal(t, date(2017, 1, 1), w[0].Key)
	assert.Equal(t, StateIdle, c.State())
}

func TestPanOutsideWindowAbandonsJump(t *testing.T) {
	ix := index.New()
	ix.Insert(types.Photo{Path: "p", Taken: date(2020, 6, 1)})

	c := NewController(ix, 3)
	c.Activate()
	require.True(t, c.Jump().Active)

	// Far outside the built decade range.
	c.OnPan(date(1800, 1, 1))

	assert.False(t, c.Jump().Active)
	assert.Equal(t, c.Window()[0].Key, c.Pivot())
}

func TestRefreshPicksUpNewItems(t *testing.T) {
	ix := index.New()
	ix.Insert(types.Photo{Path: "first", Taken: date(2020, 6, 1)})

	c := NewController(ix, 3)
	c.Activate()

	// A later insert from a still-running scan.
	ix.Insert(types.Photo{Path: "second", Taken: date(2021, 2, 1)})
	c.Refresh()

	var count int
	for _, b := range c.Window() {
		count += b.Count()
	}
	assert.Equal(t, 2, count)
}

func TestRefreshCoversTrailingBucketSpan(t *testing.T) {
	ix := index.New()
	ix.Insert(types.Photo{Path: "first", Taken: date(2020, 6, 1)})

	c := NewController(ix, 3)
	c.Activate()

	w := c.Window()
	require.NotEmpty(t, w)
	last := w[len(w)-1]

	// Insert past the last bucket's key but inside its span; the rebuild
	// must not cut the range off at the key.
	ix.Insert(types.Photo{Path: "late", Taken: last.Key.AddDate(0, 3, 0)})
	c.Refresh()

	var count int
	for _, b := range c.Window() {
		count += b.Count()
	}
	assert.Equal(t, 2, count)
}

func TestZoomTransitionStateVisible(t *testing.T) {
	c := NewController(index.New(), 3)
	c.Activate()
	c.CompleteJump()

	zoomIn(c)
	assert.Equal(t, StateZoomTransition, c.State())

	c.CompleteJump()
	assert.Equal(t, StateIdle, c.State())
}

func TestRunConsumesScanEvents(t *testing.T) {
	ix := index.New()
	bc := events.New()
	defer bc.Close()

	c := NewController(ix, 3)
	c.Activate()
	c.CompleteJump()

	sub := bc.Subscribe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx, sub)

	earliest := types.Photo{Path: "p", Taken: date(2012, 5, 5)}
	ix.Insert(earliest)
	bc.ScanCompleted(&earliest)

	assert.Eventually(t, func() bool {
		return c.Pivot().Equal(date(2012, 5, 5)) && c.Jump().Active
	}, time.Second, 5*time.Millisecond)
}
