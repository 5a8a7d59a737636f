package kvcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := New(ttl, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache_SetGetDelete(t *testing.T) {
	c := newTestCache(t, time.Minute)
	require.True(t, c.Enabled())

	_, ok, err := c.Get("radius")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set("radius", "2000"))

	v, ok, err := c.Get("radius")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2000", v)

	require.NoError(t, c.Delete("radius"))
	_, ok, err = c.Get("radius")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again is fine.
	require.NoError(t, c.Delete("radius"))
}

func TestCache_EntriesExpire(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for badger's one-second expiry clock")
	}
	c := newTestCache(t, time.Second)

	require.NoError(t, c.Set("k", "v"))
	time.Sleep(2100 * time.Millisecond)

	_, ok, err := c.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_ZeroTTLDisables(t *testing.T) {
	c := newTestCache(t, 0)
	assert.False(t, c.Enabled())

	require.NoError(t, c.Set("k", "v"))
	_, ok, err := c.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNew_NegativeTTL(t *testing.T) {
	_, err := New(-time.Second, nil)
	assert.Error(t, err)
}
