package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEphemeralCacheEvictsOldestWrite(t *testing.T) {
	clock := newFakeClock()
	cache := newEphemeralCache(2, clock.Now)

	cache.set("a", 1, time.Minute)
	cache.set("b", 2, time.Minute)

	// 조회는 순서를 바꾸지 않습니다
	_, ok := cache.get("a")
	assert.True(t, ok)

	cache.set("c", 3, time.Minute)

	_, ok = cache.get("a")
	assert.False(t, ok)
	_, ok = cache.get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, cache.len())
}

func TestEphemeralCacheUpdateRefreshesPosition(t *testing.T) {
	clock := newFakeClock()
	cache := newEphemeralCache(2, clock.Now)

	cache.set("a", 1, time.Minute)
	cache.set("b", 2, time.Minute)
	cache.update("a", time.Minute, func(current interface{}, ok bool) interface{} {
		assert.True(t, ok)
		return current.(int) + 10
	})
	cache.set("c", 3, time.Minute)

	value, ok := cache.get("a")
	assert.True(t, ok)
	assert.Equal(t, 11, value)
	_, ok = cache.get("b")
	assert.False(t, ok)
}

func TestEphemeralCacheTTLAndSweep(t *testing.T) {
	clock := newFakeClock()
	cache := newEphemeralCache(10, clock.Now)

	cache.set("short", "x", time.Second)
	cache.set("long", "y", time.Hour)
	cache.set("forever", "z", 0)

	clock.Advance(2 * time.Second)

	_, ok := cache.get("short")
	assert.False(t, ok)

	cache.set("short2", "x", time.Second)
	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, cache.sweep())
	assert.Equal(t, 2, cache.len())

	cache.purge()
	assert.Zero(t, cache.len())
}
