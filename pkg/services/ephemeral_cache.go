package services

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheItem struct {
	value     interface{}
	timestamp time.Time
	ttl       time.Duration
}

// ephemeralCache 헬스 체크 결과와 성능 지표용 단기 캐시
// 조회는 Peek으로 하므로 용량 초과 시 마지막 기록 시각이 가장 오래된 항목부터 제거됩니다
type ephemeralCache struct {
	items *lru.Cache[string, cacheItem]
	now   func() time.Time
	mutex sync.Mutex
}

func newEphemeralCache(capacity int, now func() time.Time) *ephemeralCache {
	if capacity <= 0 {
		capacity = 1
	}
	items, _ := lru.New[string, cacheItem](capacity)
	return &ephemeralCache{items: items, now: now}
}

func (c *ephemeralCache) set(key string, value interface{}, ttl time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items.Add(key, cacheItem{value: value, timestamp: c.now(), ttl: ttl})
}

func (c *ephemeralCache) get(key string) (interface{}, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.getLocked(key)
}

func (c *ephemeralCache) getLocked(key string) (interface{}, bool) {
	item, ok := c.items.Peek(key)
	if !ok {
		return nil, false
	}
	if c.expired(item) {
		c.items.Remove(key)
		return nil, false
	}
	return item.value, true
}

// update 읽기-수정-쓰기를 원자적으로 수행합니다
func (c *ephemeralCache) update(key string, ttl time.Duration, fn func(current interface{}, ok bool) interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	current, ok := c.getLocked(key)
	c.items.Add(key, cacheItem{value: fn(current, ok), timestamp: c.now(), ttl: ttl})
}

func (c *ephemeralCache) expired(item cacheItem) bool {
	return item.ttl > 0 && c.now().Sub(item.timestamp) > item.ttl
}

// sweep 만료된 항목 제거
func (c *ephemeralCache) sweep() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := 0
	for _, key := range c.items.Keys() {
		if item, ok := c.items.Peek(key); ok && c.expired(item) {
			c.items.Remove(key)
			removed++
		}
	}
	return removed
}

func (c *ephemeralCache) len() int {
	return c.items.Len()
}

func (c *ephemeralCache) purge() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items.Purge()
}
