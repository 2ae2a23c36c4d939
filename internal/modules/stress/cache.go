package stress

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/akentari/vigil/internal/domain"
)

// DefaultCacheTTL is how long a stress-test result stays servable.
const DefaultCacheTTL = time.Hour

type cacheEntry struct {
	result   SimulationResult
	cachedAt time.Time
}

// Cache stores stress-test results keyed by a fingerprint of scenario and
// portfolio composition. Expiry is checked on read: a stale entry is a miss,
// and Put overwrites unconditionally.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time

	log zerolog.Logger
}

// NewCache creates a result cache. A non-positive ttl falls back to
// DefaultCacheTTL.
func NewCache(ttl time.Duration, log zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
		log:     log.With().Str("component", "stress_cache").Logger(),
	}
}

// Get returns the cached result for key if it exists and is still fresh.
func (c *Cache) Get(key string) (SimulationResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return SimulationResult{}, false
	}
	if c.now().Sub(entry.cachedAt) > c.ttl {
		return SimulationResult{}, false
	}
	return entry.result, true
}

// Put stores a result, replacing any existing entry for the key.
func (c *Cache) Put(key string, result SimulationResult) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{result: result, cachedAt: c.now()}
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()

	c.log.Debug().Msg("Cleared stress-test result cache")
}

// Prune removes expired entries and returns how many were dropped. Run
// periodically so abandoned keys do not accumulate between reads.
func (c *Cache) Prune() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.cachedAt) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Stats reports cache occupancy.
func (c *Cache) Stats() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return map[string]int{"entry_count": len(c.entries)}
}

// CacheKey fingerprints a scenario name plus portfolio composition. Position
// order does not matter; a change in any quantity or current price produces
// a new key. Prices are rounded to two decimals so sub-cent noise does not
// defeat caching.
func CacheKey(scenario string, positions []domain.Position) string {
	lines := make([]string, 0, len(positions))
	for _, p := range positions {
		lines = append(lines, fmt.Sprintf("%s|%g|%.2f", p.Asset, p.Quantity, p.CurrentPrice))
	}
	sort.Strings(lines)

	var sb strings.Builder
	sb.WriteString(scenario)
	for _, line := range lines {
		sb.WriteByte('|')
		sb.WriteString(line)
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
