package metacache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := Open(filepath.Join(t.TempDir(), "metacache"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestStoreAndLookup(t *testing.T) {
	c := openTestCache(t)

	taken := time.Date(2023, 4, 12, 9, 30, 0, 0, time.Local)
	require.NoError(t, c.Store("/photos/a.jpg", 1111, taken))

	got, ok := c.Lookup("/photos/a.jpg", 1111)
	require.True(t, ok)
	assert.True(t, got.Equal(taken))
}

func TestLookupMiss(t *testing.T) {
	c := openTestCache(t)

	_, ok := c.Lookup("/photos/missing.jpg", 1)
	assert.False(t, ok)
}

func TestLookupStaleMtime(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.Store("/photos/a.jpg", 1111, time.Now()))

	// File changed since extraction: entry must not be used.
	_, ok := c.Lookup("/photos/a.jpg", 2222)
	assert.False(t, ok)
}

func TestPutBatch(t *testing.T) {
	c := openTestCache(t)

	taken := time.Date(2022, 8, 1, 18, 0, 0, 0, time.Local)
	entries := map[string]*Entry{
		"/photos/a.jpg": {Mtime: 1, Taken: taken.UnixNano()},
		"/photos/b.jpg": {Mtime: 2, Taken: taken.Add(time.Hour).UnixNano()},
	}
	require.NoError(t, c.PutBatch(entries))

	got, ok := c.Lookup("/photos/b.jpg", 2)
	require.True(t, ok)
	assert.True(t, got.Equal(taken.Add(time.Hour)))
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "metacache")

	c, err := Open(dir)
	require.NoError(t, err)
	taken := time.Date(2021, 12, 24, 20, 0, 0, 0, time.Local)
	require.NoError(t, c.Store("/photos/a.jpg", 99, taken))
	require.NoError(t, c.Close())

	c, err = Open(dir)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	got, ok := c.Lookup("/photos/a.jpg", 99)
	require.True(t, ok)
	assert.True(t, got.Equal(taken))
}
