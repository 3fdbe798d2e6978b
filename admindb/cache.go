package admindb

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/wpkg-go/wpkg/database"
	"github.com/wpkg-go/wpkg/database/goleveldb"
)

// Cache is an optional secondary index over the status file, giving
// O(1) "which package owns this path" lookups (dpkg -S-style
// queries) without a linear scan of every record's file list. The
// flat files under the admin directory remain authoritative per
// §4.4; Cache is rebuilt from them whenever absent or stale, never
// the other way around.
type Cache struct {
	store database.Storage
}

// OpenCache opens (creating if necessary) the goleveldb-backed cache
// at <admin>/cache.
func OpenCache(adminDir string) (*Cache, error) {
	store, err := goleveldb.NewOpenDB(filepath.Join(adminDir, "cache"))
	if err != nil {
		return nil, errors.Wrap(err, "admindb: opening path cache")
	}
	return &Cache{store: store}, nil
}

// Close releases the underlying goleveldb handle.
func (c *Cache) Close() error {
	return c.store.Close()
}

func pathKey(p string) []byte { return []byte("path:" + p) }

// Rebuild repopulates the cache from scratch given the current set of
// records — called whenever the cache is missing or its mtime
// predates the status file's.
func (c *Cache) Rebuild(records []*Record) error {
	if err := c.store.Close(); err != nil {
		return errors.Wrap(err, "admindb: closing stale path cache")
	}
	if err := c.store.Drop(); err != nil {
		return errors.Wrap(err, "admindb: dropping stale path cache")
	}
	if err := c.store.Open(); err != nil {
		return errors.Wrap(err, "admindb: reopening path cache")
	}

	batch := c.store.CreateBatch()
	for _, r := range records {
		for _, f := range r.Files {
			if err := batch.Put(pathKey(f.Path), []byte(r.Name)); err != nil {
				return err
			}
		}
	}
	return batch.Write()
}

// Owner returns the name of the package that owns path, or "" if
// none is recorded.
func (c *Cache) Owner(path string) (string, error) {
	value, err := c.store.Get(pathKey(path))
	if err == database.ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// Owner returns the name of the package that owns path, using the
// goleveldb-backed path index lazily opened (and rebuilt on first use
// or whenever Stale reports the on-disk cache predates the status
// file) rather than a linear scan of every record's Files for each
// lookup.
func (db *DB) Owner(path string) (string, error) {
	db.cacheMu.Lock()
	defer db.cacheMu.Unlock()

	firstOpen := db.cache == nil
	if firstOpen {
		c, err := OpenCache(db.dir)
		if err != nil {
			return "", err
		}
		db.cache = c
	}
	if firstOpen || Stale(db.dir) {
		if err := db.cache.Rebuild(db.All()); err != nil {
			return "", err
		}
	}
	return db.cache.Owner(path)
}

// CloseCache releases the path-ownership cache's goleveldb handle, if
// Owner ever opened one. Safe to call unconditionally on shutdown.
func (db *DB) CloseCache() error {
	db.cacheMu.Lock()
	defer db.cacheMu.Unlock()
	if db.cache == nil {
		return nil
	}
	err := db.cache.Close()
	db.cache = nil
	return err
}

// Stale reports whether the cache's backing file predates the
// status file's modification time, meaning it must be rebuilt before
// being trusted.
func Stale(adminDir string) bool {
	statusInfo, err := os.Stat(filepath.Join(adminDir, "status"))
	if err != nil {
		return false
	}
	cacheInfo, err := os.Stat(filepath.Join(adminDir, "cache"))
	if err != nil {
		return true
	}
	return cacheInfo.ModTime().Before(statusInfo.ModTime())
}
