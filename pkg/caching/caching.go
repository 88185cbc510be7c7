// Package caching keeps fetched pages on disk so repeated inspections of the
// same URL do not hit the network.
package caching

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Loader fetches the body of url on a cache miss.
type Loader func(ctx context.Context, url string) ([]byte, error)

// Cache is a directory of URL-keyed files that expire after ttl.
// A non-positive ttl turns every lookup into a miss.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewCache creates dir if needed.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (c *Cache) path(url string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%x.html", sha256.Sum256([]byte(url))))
}

// Get returns the cached body for url if present and fresh. Expired entries
// are removed.
func (c *Cache) Get(url string) ([]byte, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	p := c.path(url)
	info, err := os.Stat(p)
	if err != nil {
		return nil, false
	}
	if c.now().Sub(info.ModTime()) > c.ttl {
		_ = os.Remove(p)
		return nil, false
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores data for url. The file is written to a temporary name and
// renamed so readers never observe a partial body.
func (c *Cache) Set(url string, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, "page-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(url)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to commit cache file: %w", err)
	}
	return nil
}

// Invalidate drops the entry for url. Missing entries are not an error.
func (c *Cache) Invalidate(url string) error {
	err := os.Remove(c.path(url))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to invalidate cache entry: %w", err)
	}
	return nil
}

// Fetch returns the cached body for url, or calls load and caches its
// result. hit reports whether the network was skipped. A failure to write
// the cache does not fail the fetch.
func (c *Cache) Fetch(ctx context.Context, url string, load Loader) (data []byte, hit bool, err error) {
	if data, ok := c.Get(url); ok {
		return data, true, nil
	}
	data, err = load(ctx, url)
	if err != nil {
		return nil, false, err
	}
	_ = c.Set(url, data)
	return data, false, nil
}
