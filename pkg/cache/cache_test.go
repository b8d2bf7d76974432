package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestCache(maxItems int) *Cache {
	// No cleanup goroutine; expiration is checked on read
	return NewCacheWithOptions(time.Minute, 0, maxItems)
}

func TestSetAndGet(t *testing.T) {
	c := newTestCache(0)

	c.Set("greeting", "hello")

	value, found := c.Get("greeting")
	assert.True(t, found)
	assert.Equal(t, "hello", value)
}

func TestGetMissing(t *testing.T) {
	c := newTestCache(0)

	_, found := c.Get("absent")
	assert.False(t, found)
}

func TestExpiredEntryIsNotReturned(t *testing.T) {
	c := newTestCache(0)

	c.SetWithExpiration("ephemeral", 42, time.Nanosecond)
	time.Sleep(time.Millisecond)

	_, found := c.Get("ephemeral")
	assert.False(t, found)
}

func TestZeroExpirationNeverExpires(t *testing.T) {
	c := newTestCache(0)

	c.SetWithExpiration("pinned", 1, 0)

	_, found := c.Get("pinned")
	assert.True(t, found)
}

func TestDelete(t *testing.T) {
	c := newTestCache(0)

	c.Set("key", "value")
	c.Delete("key")

	_, found := c.Get("key")
	assert.False(t, found)
}

func TestFlush(t *testing.T) {
	c := newTestCache(0)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Flush()

	assert.Equal(t, 0, c.Count())
}

func TestMaxItemsEvicts(t *testing.T) {
	c := newTestCache(2)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	assert.Equal(t, 2, c.Count())

	_, found := c.Get("c")
	assert.True(t, found, "newest entry must survive eviction")
}

func TestOverwritingExistingKeyDoesNotEvict(t *testing.T) {
	c := newTestCache(2)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10)

	assert.Equal(t, 2, c.Count())

	value, found := c.Get("a")
	assert.True(t, found)
	assert.Equal(t, 10, value)
}
