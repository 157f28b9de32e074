package index

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/timescape/pkg/timescape/types"
)

func photoAt(path string, t time.Time) types.Photo {
	return types.Photo{Path: path, Taken: t}
}

func TestInsertKeepsOrder(t *testing.T) {
	ix := New()

	base := time.Date(2023, 6, 1, 12, 0, 0, 0, time.Local)

	// Arbitrary insertion order.
	ix.Insert(photoAt("c", base.Add(2*time.Hour)))
	ix.Insert(photoAt("a", base))
	ix.Insert(photoAt("b", base.Add(time.Hour)))

	got := ix.Range(base.Add(-time.Hour), base.Add(3*time.Hour))
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Path)
	assert.Equal(t, "b", got[1].Path)
	assert.Equal(t, "c", got[2].Path)
}

func TestInsertRandomOrderSorted(t *testing.T) {
	ix := New()
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.Local)

	r := rand.New(rand.NewSource(42))
	for _, offset := range r.Perm(200) {
		ix.Insert(photoAt("p", base.Add(time.Duration(offset)*time.Minute)))
	}

	got := ix.Range(base, base.Add(200*time.Minute))
	require.Len(t, got, 200)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Taken.Before(got[i-1].Taken),
			"photos out of order at index %d", i)
	}
}

func TestRangeInclusiveBounds(t *testing.T) {
	ix := New()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(2029, 12, 31, 23, 59, 59, 0, time.Local)

	ix.Insert(photoAt("start", start))
	ix.Insert(photoAt("end", end))
	ix.Insert(photoAt("before", start.Add(-time.Second)))
	ix.Insert(photoAt("after", end.Add(time.Second)))

	got := ix.Range(start, end)
	require.Len(t, got, 2)
	assert.Equal(t, "start", got[0].Path)
	assert.Equal(t, "end", got[1].Path)
}

func TestRangeIdempotent(t *testing.T) {
	ix := New()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	for i := 0; i < 10; i++ {
		ix.Insert(photoAt("p", base.Add(time.Duration(i)*time.Hour)))
	}

	first := ix.Range(base, base.Add(24*time.Hour))
	second := ix.Range(base, base.Add(24*time.Hour))
	assert.Equal(t, first, second)
}

func TestRangeInvertedBounds(t *testing.T) {
	ix := New()
	now := time.Now()
	ix.Insert(photoAt("p", now))

	assert.Empty(t, ix.Range(now.Add(time.Hour), now))
}

func TestEmptyIndexQueries(t *testing.T) {
	ix := New()

	assert.Empty(t, ix.Range(time.Time{}, time.Now()))

	_, ok := ix.Min()
	assert.False(t, ok)
	_, ok = ix.Max()
	assert.False(t, ok)
	_, ok = ix.Earliest()
	assert.False(t, ok)
	assert.Zero(t, ix.Len())
}

func TestMinMax(t *testing.T) {
	ix := New()
	lo := time.Date(2015, 5, 1, 0, 0, 0, 0, time.Local)
	hi := time.Date(2024, 8, 1, 0, 0, 0, 0, time.Local)

	ix.Insert(photoAt("hi", hi))
	ix.Insert(photoAt("lo", lo))

	min, ok := ix.Min()
	require.True(t, ok)
	assert.Equal(t, lo, min)

	max, ok := ix.Max()
	require.True(t, ok)
	assert.Equal(t, hi, max)

	earliest, ok := ix.Earliest()
	require.True(t, ok)
	assert.Equal(t, "lo", earliest.Path)
}

func TestClear(t *testing.T) {
	ix := New()
	ix.Insert(photoAt("p", time.Now()))
	ix.Clear()

	assert.Zero(t, ix.Len())
	_, ok := ix.Min()
	assert.False(t, ok)
}

func TestConcurrentReadersOneWriter(t *testing.T) {
	ix := New()
	base := time.Date(2022, 1, 1, 0, 0, 0, 0, time.Local)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			ix.Insert(photoAt("p", base.Add(time.Duration(i)*time.Second)))
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				got := ix.Range(base, base.Add(time.Hour))
				for j := 1; j < len(got); j++ {
					if got[j].Taken.Before(got[j-1].Taken) {
						t.Error("range result out of order")
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestRemoveByPath(t *testing.T) {
	ix := New()
	base := time.Date(2022, 1, 1, 0, 0, 0, 0, time.Local)
	ix.Insert(photoAt("a", base))
	ix.Insert(photoAt("b", base.Add(time.Hour)))
	ix.Insert(photoAt("a", base.Add(2*time.Hour)))

	assert.Equal(t, 2, ix.RemoveByPath("a"))
	assert.Equal(t, 1, ix.Len())

	got := ix.Range(base, base.Add(3*time.Hour))
	assert.Equal(t, "b", got[0].Path)

	assert.Zero(t, ix.RemoveByPath("missing"))
}

func TestRemoveByPrefix(t *testing.T) {
	ix := New()
	base := time.Date(2022, 1, 1, 0, 0, 0, 0, time.Local)
	ix.Insert(photoAt("/lib/album/a.jpg", base))
	ix.Insert(photoAt("/lib/album/b.jpg", base.Add(time.Hour)))
	ix.Insert(photoAt("/lib/albums-other/c.jpg", base.Add(2*time.Hour)))

	assert.Equal(t, 2, ix.RemoveByPrefix("/lib/album/"))
	assert.Equal(t, 1, ix.Len())

	got := ix.Range(base, base.Add(3*time.Hour))
	assert.Equal(t, "/lib/albums-other/c.jpg", got[0].Path)

	assert.Zero(t, ix.RemoveByPrefix("/nowhere/"))
}
