package fs

import (
	"os"
	"sync"
	"time"
)

// racyWindow covers the coarsest modification time granularity of the
// filesystems we run on. A file stat-ed less than racyWindow after its last
// modification may still change without its stat changing.
const racyWindow = 2 * time.Second

// cacheEntry is the content of a file as of its last observed stat.
type cacheEntry struct {
	value   string
	modTime time.Time
	size    int64
	seenAt  time.Time
}

// racy reports whether the file could have been rewritten, same size and
// same mtime, after the entry was taken.
func (e cacheEntry) racy() bool {
	return e.seenAt.Sub(e.modTime) < racyWindow
}

// cache keeps file contents keyed by path and revalidates them with a stat
// on every read. An entry is served only while modification time and size
// are unchanged and the file had already been stable for racyWindow when the
// entry was taken.
type cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	hits    uint64
	misses  uint64
}

func newCache() *cache {
	return &cache{entries: make(map[string]cacheEntry)}
}

// get returns the cached content of path if info still describes it.
func (c *cache) get(path string, info os.FileInfo) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok || !e.modTime.Equal(info.ModTime()) || e.size != info.Size() || e.racy() {
		c.misses++
		return "", false
	}
	c.hits++
	return e.value, true
}

func (c *cache) put(path, value string, info os.FileInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = cacheEntry{value: value, modTime: info.ModTime(), size: info.Size(), seenAt: time.Now()}
}

func (c *cache) drop(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Len returns the number of cached files.
func (c *cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *cache) stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
