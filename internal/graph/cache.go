package graph

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/pohlang/plhub/internal/errors"
)

// Version is the on-disk cache format version. A mismatch discards the
// cache and forces a full rebuild.
const Version = 1

// Cache holds the FileRecords for a project and the derived reverse
// edges. It is owned and mutated exclusively by the build orchestrator;
// the lock only guards read-only snapshots taken by other components.
type Cache struct {
	mu      sync.RWMutex
	records map[string]*FileRecord

	// dependents is the transpose of the records' Deps edges:
	// dependents[a] contains every file that imports a.
	dependents map[string]map[string]struct{}
}

// cacheFile is the persisted JSON shape.
type cacheFile struct {
	Version int                   `json:"version"`
	Files   map[string]cacheEntry `json:"files"`
}

type cacheEntry struct {
	Hash  string   `json:"hash"`
	MTime int64    `json:"mtime"`
	Deps  []string `json:"deps"`
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		records:    make(map[string]*FileRecord),
		dependents: make(map[string]map[string]struct{}),
	}
}

// Load reads a cache file. A missing file is a cold start and yields an
// empty cache with no error. A corrupt or version-mismatched file also
// yields an empty cache, plus an error the caller should log: the build
// degrades to a full rebuild, it never fails outright.
func Load(path string) (*Cache, error) {
	c := NewCache()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, errors.New("E101").Wrap(err)
	}

	var file cacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return c, errors.New("E101").Wrap(err)
	}
	if file.Version != Version {
		return c, errors.New("E104").
			WithDetail("cache version " + strconv.Itoa(file.Version) + ", expected " + strconv.Itoa(Version))
	}

	for p, entry := range file.Files {
		c.put(&FileRecord{
			Path:  p,
			Hash:  entry.Hash,
			MTime: entry.MTime,
			Deps:  entry.Deps,
		})
	}
	return c, nil
}

// Save persists the cache atomically (temp file + rename) so a crash
// mid-write never leaves a truncated cache behind.
func (c *Cache) Save(path string) error {
	c.mu.RLock()
	file := cacheFile{
		Version: Version,
		Files:   make(map[string]cacheEntry, len(c.records)),
	}
	for p, rec := range c.records {
		deps := rec.Deps
		if deps == nil {
			deps = []string{}
		}
		file.Files[p] = cacheEntry{Hash: rec.Hash, MTime: rec.MTime, Deps: deps}
	}
	c.mu.RUnlock()

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return errors.New("E103").Wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.New("E103").Wrap(err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.New("E103").Wrap(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.New("E103").Wrap(err)
	}
	return nil
}

// Get returns the record for a path, if present.
func (c *Cache) Get(path string) (FileRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[path]
	if !ok {
		return FileRecord{}, false
	}
	return *rec, true
}

// Put inserts or replaces a record and rebuilds its reverse edges.
func (c *Cache) Put(rec FileRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(&rec)
}

func (c *Cache) put(rec *FileRecord) {
	if old, ok := c.records[rec.Path]; ok {
		for _, dep := range old.Deps {
			delete(c.dependents[dep], rec.Path)
		}
	}
	c.records[rec.Path] = rec
	for _, dep := range rec.Deps {
		set, ok := c.dependents[dep]
		if !ok {
			set = make(map[string]struct{})
			c.dependents[dep] = set
		}
		set[rec.Path] = struct{}{}
	}
}

// Remove deletes a record, e.g. when the file is removed from disk.
func (c *Cache) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[path]
	if !ok {
		return
	}
	for _, dep := range rec.Deps {
		delete(c.dependents[dep], path)
	}
	delete(c.records, path)
}

// Dependents returns the files that directly import path.
func (c *Cache) Dependents(path string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set := c.dependents[path]
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Paths returns every cached path, sorted.
func (c *Cache) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.records))
	for p := range c.records {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Stale compares the given source files against the cache and returns
// the paths that are new or whose content hash differs. A file that
// cannot be hashed counts as stale; the build surfaces the underlying
// problem per file rather than the sweep failing outright. Cached
// records whose files are no longer in sources are pruned. A cold
// (empty) cache makes every source stale, so startup is the degenerate
// case of the same incremental algorithm.
func (c *Cache) Stale(sources []string) []string {
	present := make(map[string]struct{}, len(sources))
	var stale []string

	for _, src := range sources {
		present[src] = struct{}{}

		rec, ok := c.Get(src)
		if !ok {
			stale = append(stale, src)
			continue
		}
		hash, err := HashFile(src)
		if err != nil || hash != rec.Hash {
			stale = append(stale, src)
		}
	}

	for _, p := range c.Paths() {
		if _, ok := present[p]; !ok {
			c.Remove(p)
		}
	}

	sort.Strings(stale)
	return stale
}

