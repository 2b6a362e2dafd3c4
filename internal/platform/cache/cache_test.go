package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestTTLCache_ExpiresAfterTTL(t *testing.T) {
	clk := &clock{t: time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)}
	c, err := NewTTL[string](10, time.Hour, clk.now)
	require.NoError(t, err)

	c.Set("pet-1", "Sprout")

	clk.t = clk.t.Add(59 * time.Minute)
	v, ok := c.Get("pet-1")
	require.True(t, ok)
	assert.Equal(t, "Sprout", v)

	clk.t = clk.t.Add(time.Minute)
	_, ok = c.Get("pet-1")
	assert.False(t, ok, "entry must be stale exactly at ttl")
	assert.Equal(t, 0, c.Len())
}

func TestTTLCache_SetRefreshesTimestamp(t *testing.T) {
	clk := &clock{t: time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)}
	c, err := NewTTL[int](10, time.Hour, clk.now)
	require.NoError(t, err)

	c.Set("k", 1)
	clk.t = clk.t.Add(50 * time.Minute)
	c.Set("k", 2)
	clk.t = clk.t.Add(50 * time.Minute)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestTTLCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewTTL[int](2, time.Hour, nil)
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestNewTTL_RejectsNonPositiveSize(t *testing.T) {
	_, err := NewTTL[int](0, time.Hour, nil)
	assert.Error(t, err)
}

func TestNop_NeverHits(t *testing.T) {
	var c Cache[int] = Nop[int]{}
	c.Set("a", 1)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.TTL())
}
