// Package geocache provides the proximity-tolerant, disk-persisted cache of
// resolved locations and a rate-limited caching decorator for a
// [domain.Geocoder].
package geocache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"

	"github.com/anten-puzl/CityPin/internal/domain"
)

// Cache maps rounded coordinate keys to resolved locations. Lookups try an
// exact key match first and fall back to a linear proximity scan, so nearby
// GPS fixes (photos taken minutes apart at the same venue) share one live
// geocode request. The zero-value map semantics make entries append-only
// within a run; Store overwrites silently when re-resolving the same key.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]domain.Location
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]domain.Location)}
}

// Load reads a persisted cache document from path. A missing file yields an
// empty cache and no error; a corrupt document yields an empty cache and an
// error the caller is expected to log, not fail on.
func Load(path string) (*Cache, error) {
	c := New()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return c, fmt.Errorf("read cache file: %w", err)
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		c.entries = make(map[string]domain.Location)
		return c, fmt.Errorf("decode cache file %s: %w", path, err)
	}
	return c, nil
}

// Save overwrites the persisted cache document wholesale. A write failure
// leaves the in-memory cache valid; the caller logs and continues.
func (c *Cache) Save(path string) error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}

// Lookup returns the cached location for coord, trying the exact six-decimal
// key first and then scanning all entries for one within [domain.Tolerance]
// on both axes. The scan walks keys in sorted order so the first tolerant
// match is deterministic. Malformed keys in a hand-edited or legacy document
// are skipped.
func (c *Cache) Lookup(coord domain.Coordinate) (domain.Location, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if loc, ok := c.entries[coord.Key()]; ok {
		return loc, true
	}

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		cached, err := domain.ParseKey(key)
		if err != nil {
			continue
		}
		if cached.CloseTo(coord) {
			return c.entries[key], true
		}
	}
	return domain.Location{}, false
}

// Store inserts loc under the exact-match key for coord.
func (c *Cache) Store(coord domain.Coordinate, loc domain.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[coord.Key()] = loc
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
