package stress

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akentari/vigil/internal/domain"
)

func cachePositions() []domain.Position {
	return []domain.Position{
		{Asset: "BTC", Quantity: 2, CurrentPrice: 50000, CollateralValue: 100000},
		{Asset: "ETH", Quantity: 10, CurrentPrice: 3000, CollateralValue: 30000},
	}
}

func TestCacheKeyIgnoresPositionOrder(t *testing.T) {
	positions := cachePositions()
	reversed := []domain.Position{positions[1], positions[0]}

	assert.Equal(t, CacheKey("crash", positions), CacheKey("crash", reversed))
}

func TestCacheKeySensitivity(t *testing.T) {
	positions := cachePositions()
	base := CacheKey("crash", positions)

	t.Run("scenario name changes the key", func(t *testing.T) {
		assert.NotEqual(t, base, CacheKey("winter", positions))
	})

	t.Run("quantity changes the key", func(t *testing.T) {
		changed := cachePositions()
		changed[0].Quantity = 3
		assert.NotEqual(t, base, CacheKey("crash", changed))
	})

	t.Run("price changes the key", func(t *testing.T) {
		changed := cachePositions()
		changed[0].CurrentPrice = 49000
		assert.NotEqual(t, base, CacheKey("crash", changed))
	})

	t.Run("sub-cent price noise does not change the key", func(t *testing.T) {
		noisy := cachePositions()
		noisy[0].CurrentPrice = 50000.001
		assert.Equal(t, base, CacheKey("crash", noisy))
	})
}

func TestCachePutGetClear(t *testing.T) {
	cache := NewCache(time.Hour, zerolog.Nop())

	_, ok := cache.Get("k")
	assert.False(t, ok)

	cache.Put("k", SimulationResult{ID: "first"})
	got, ok := cache.Get("k")
	require.True(t, ok)
	assert.Equal(t, "first", got.ID)

	// Put overwrites unconditionally.
	cache.Put("k", SimulationResult{ID: "second"})
	got, ok = cache.Get("k")
	require.True(t, ok)
	assert.Equal(t, "second", got.ID)

	assert.Equal(t, map[string]int{"entry_count": 1}, cache.Stats())

	cache.Clear()
	_, ok = cache.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Stats()["entry_count"])
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := NewCache(time.Hour, zerolog.Nop())

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Put("k", SimulationResult{ID: "cached"})

	// Just inside the TTL the entry is still served.
	now = now.Add(time.Hour)
	_, ok := cache.Get("k")
	assert.True(t, ok, "an entry exactly at the TTL boundary is still fresh")

	// One tick past the TTL it is a miss.
	now = now.Add(time.Nanosecond)
	_, ok = cache.Get("k")
	assert.False(t, ok, "expiry is checked at read time")
}

func TestCachePrune(t *testing.T) {
	cache := NewCache(time.Hour, zerolog.Nop())

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Put("old", SimulationResult{ID: "old"})
	now = now.Add(2 * time.Hour)
	cache.Put("fresh", SimulationResult{ID: "fresh"})

	removed := cache.Prune()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, cache.Stats()["entry_count"])

	_, ok := cache.Get("fresh")
	assert.True(t, ok)
}

func TestNewCacheDefaultTTL(t *testing.T) {
	cache := NewCache(0, zerolog.Nop())
	assert.Equal(t, DefaultCacheTTL, cache.ttl)
}
