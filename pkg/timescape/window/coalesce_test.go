package window

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoalescerRunsInline(t *testing.T) {
	var c Coalescer
	ran := false
	c.Do(func() { ran = true })
	assert.True(t, ran)
	assert.False(t, c.Busy())
}

func TestCoalescerCollapsesOverlappingRequests(t *testing.T) {
	var c Coalescer
	var runs atomic.Int64

	started := make(chan struct{})
	release := make(chan struct{})

	go c.Do(func() {
		close(started)
		<-release
		runs.Add(1)
	})
	<-started

	// Many requests while the first run is in flight collapse to one.
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Do(func() { runs.Add(1) })
		}()
	}
	wg.Wait()
	close(release)

	assert.Eventually(t, func() bool {
		return !c.Busy()
	}, time.Second, 5*time.Millisecond)

	// First run plus exactly one trailing run.
	assert.Equal(t, int64(2), runs.Load())
}

func TestCoalescerLatestWins(t *testing.T) {
	var c Coalescer

	started := make(chan struct{})
	release := make(chan struct{})
	go c.Do(func() {
		close(started)
		<-release
	})
	<-started

	var got atomic.Int64
	c.Do(func() { got.Store(1) })
	c.Do(func() { got.Store(2) })
	close(release)

	assert.Eventually(t, func() bool {
		return got.Load() == 2 && !c.Busy()
	}, time.Second, 5*time.Millisecond)
}
