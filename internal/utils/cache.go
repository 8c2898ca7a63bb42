package utils

import (
	"io/fs"
	"os"
	"sync"
	"time"
)

// fileStamp identifies one version of a file on disk
type fileStamp struct {
	modTime time.Time
	size    int64
}

func stampOf(info fs.FileInfo) fileStamp {
	return fileStamp{modTime: info.ModTime(), size: info.Size()}
}

type cacheEntry[V any] struct {
	value V
	stamp fileStamp
}

// FileCache holds values derived from source files. An entry is valid while the
// file keeps the modification time and size it had when the entry was stored.
type FileCache[V any] struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry[V]
}

// NewFileCache creates an empty file cache
func NewFileCache[V any]() *FileCache[V] {
	return &FileCache[V]{entries: make(map[string]cacheEntry[V])}
}

// Get returns the value stored for path if the file is unchanged; stale entries are dropped
func (c *FileCache[V]) Get(path string) (V, bool) {
	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if info, err := os.Stat(path); err == nil && stampOf(info) == entry.stamp {
		return entry.value, true
	}

	c.Delete(path)
	return zero, false
}

// Set stores value for path, stamped with the file's current metadata
func (c *FileCache[V]) Set(path string, value V) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = cacheEntry[V]{value: value, stamp: stampOf(info)}
	return nil
}

func (c *FileCache[V]) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Len returns the number of cached entries
func (c *FileCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
