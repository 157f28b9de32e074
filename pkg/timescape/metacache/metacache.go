// Package metacache caches extracted capture timestamps so rescans skip
// metadata decoding for files that have not changed. Only extraction work is
// cached; the date index itself is rebuilt in memory every session.
package metacache

import (
	"bytes"
	"encoding/gob"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when a cache entry doesn't exist.
var ErrNotFound = errors.New("cache entry not found")

// Entry is a cached extraction result for one file.
type Entry struct {
	// Mtime is the file's modification time as UnixNano at extraction time.
	// A differing mtime invalidates the entry.
	Mtime int64

	// Taken is the extracted capture time as UnixNano.
	Taken int64
}

// encode serializes the entry using gob.
func (e *Entry) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decode deserializes bytes into the entry.
func (e *Entry) decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(e)
}

// Cache is a badger-backed timestamp cache keyed by absolute file path.
type Cache struct {
	db *badger.DB
}

// Open opens or creates a cache at the given path.
func Open(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable badger logging.

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Lookup returns the cached capture time for path if the entry exists and
// its recorded mtime matches. The second return is false on miss or on a
// changed file.
func (c *Cache) Lookup(path string, mtime int64) (time.Time, bool) {
	var entry Entry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(path))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(entry.decode)
	})
	if err != nil || entry.Mtime != mtime {
		return time.Time{}, false
	}
	return time.Unix(0, entry.Taken), true
}

// Store records an extraction result for path.
func (c *Cache) Store(path string, mtime int64, taken time.Time) error {
	value, err := (&Entry{Mtime: mtime, Taken: taken.UnixNano()}).encode()
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(path), value)
	})
}

// PutBatch stores many extraction results in one write batch.
func (c *Cache) PutBatch(entries map[string]*Entry) error {
	wb := c.db.NewWriteBatch()
	defer wb.Cancel()

	for path, entry := range entries {
		value, err := entry.encode()
		if err != nil {
			return err
		}
		if err := wb.Set([]byte(path), value); err != nil {
			return err
		}
	}
	return wb.Flush()
}
