// Package cache is the durable per-key local cache: the last-known-good
// snapshot of every collection and the caller's final source of truth
// when both backing stores are unreachable.
package cache

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	// cacheDirPerm is the permission mode for the cache directory.
	cacheDirPerm = fs.FileMode(0o700)

	// cacheFilePerm is the permission mode for the cache database file.
	cacheFilePerm = fs.FileMode(0o600)

	// cacheOpenTimeout is the maximum time to wait for the bolt database lock.
	cacheOpenTimeout = 5 * time.Second
)

var collectionsBucket = []byte("collections")

// Cache wraps a bbolt database holding one JSON value per collection
// key, plus in-memory write versioning and local change subscribers.
//
// Versioning guards against out-of-order completions: every write is
// issued a version via Next, and a result computed from a slow fallback
// round trip is applied only through WriteIfCurrent, which refuses it
// once a newer version has been issued for the same key.
type Cache struct {
	db *bolt.DB

	mu      sync.Mutex
	issued  map[string]uint64
	subs    map[string]map[int]func()
	nextSub int
}

// Open opens the cache database at path, creating it and its parent
// directory if they do not exist.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), cacheDirPerm); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := bolt.Open(path, cacheFilePerm, &bolt.Options{Timeout: cacheOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(collectionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache db: %w", err)
	}

	return &Cache{
		db:     db,
		issued: make(map[string]uint64),
		subs:   make(map[string]map[int]func()),
	}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Read returns the raw JSON stored for key. The second return is false
// when the key has never been written.
func (c *Cache) Read(key string) ([]byte, bool) {
	var raw []byte

	_ = c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(collectionsBucket).Get([]byte(key))
		if v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}

		return nil
	})

	return raw, raw != nil
}

// Next issues the next write version for key. Callers obtain a version
// before writing and pass it back through Write or WriteIfCurrent.
func (c *Cache) Next(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.issued[key]++

	return c.issued[key]
}

// Write stores raw for key unconditionally and notifies subscribers.
// version should come from Next; passing an older version still
// overwrites (the caller decided this write wins), it only affects
// which in-flight round trips WriteIfCurrent will later refuse.
func (c *Cache) Write(key string, raw []byte, version uint64) error {
	if err := c.put(key, raw); err != nil {
		return err
	}

	c.notify(key)

	return nil
}

// WriteIfCurrent stores raw for key only when version still equals the
// latest version issued for that key. It returns false without writing
// when a newer write has been issued in the meantime.
func (c *Cache) WriteIfCurrent(key string, raw []byte, version uint64) (bool, error) {
	c.mu.Lock()
	current := c.issued[key] == version
	c.mu.Unlock()

	if !current {
		return false, nil
	}

	if err := c.put(key, raw); err != nil {
		return false, err
	}

	c.notify(key)

	return true, nil
}

// Subscribe registers fn to run after every applied write for key.
// The returned function removes the subscription; each subscriber is
// independent and there is no shared reference counting.
func (c *Cache) Subscribe(key string, fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subs[key] == nil {
		c.subs[key] = make(map[int]func())
	}

	id := c.nextSub
	c.nextSub++
	c.subs[key][id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		delete(c.subs[key], id)
	}
}

func (c *Cache) put(key string, raw []byte) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(collectionsBucket).Put([]byte(key), raw)
	})
}

// notify invokes subscribers outside the lock so a subscriber may
// unsubscribe or read the cache without deadlocking.
func (c *Cache) notify(key string) {
	c.mu.Lock()

	fns := make([]func(), 0, len(c.subs[key]))
	for _, fn := range c.subs[key] {
		fns = append(fns, fn)
	}

	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
