package geocode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCache_PutGet(t *testing.T) {
	c := NewResultCache(4, time.Minute)

	key := cacheKey(NewQuery("fayetteville ar"))
	c.Put(key, oneResult("fayetteville"))

	got, ok := c.Get(key)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "fayetteville", got[0].Name)
}

func TestResultCache_MissOnUnknownKey(t *testing.T) {
	c := NewResultCache(4, time.Minute)
	_, ok := c.Get("nope")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestResultCache_TTLExpiry(t *testing.T) {
	c := NewResultCache(4, 10*time.Millisecond)
	c.Put("k", oneResult("x"))

	time.Sleep(25 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestResultCache_EvictsOldestAtCapacity(t *testing.T) {
	c := NewResultCache(2, time.Minute)
	c.Put("a", oneResult("a"))
	c.Put("b", oneResult("b"))
	c.Put("c", oneResult("c"))

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestResultCache_GetRefreshesRecency(t *testing.T) {
	c := NewResultCache(2, time.Minute)
	c.Put("a", oneResult("a"))
	c.Put("b", oneResult("b"))

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", oneResult("c"))
	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestCacheKey_ViewportSeparatesEntries(t *testing.T) {
	q := NewQuery("white river")
	bounded := q
	bounded.Viewport = BBox{South: 35, West: -95, North: 37, East: -93}.Bounds()

	assert.NotEqual(t, cacheKey(q), cacheKey(bounded))
}

func TestCacheKey_NegativeEntryDistinctFromMiss(t *testing.T) {
	c := NewResultCache(4, time.Minute)
	c.Put("empty", nil)

	got, ok := c.Get("empty")
	assert.True(t, ok)
	assert.Empty(t, got)
}
