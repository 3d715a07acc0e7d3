package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointPoolDeduplicates(t *testing.T) {
	pool := NewEndpointPool([]string{"http://a", "", "http://b", "http://a", "http://c"})

	assert.Equal(t, 3, pool.Len())
	assert.Equal(t, []string{"http://a", "http://b", "http://c"}, pool.All())
	assert.Equal(t, "http://a", pool.First())
	assert.True(t, pool.Contains("http://b"))
	assert.False(t, pool.Contains("http://d"))
}

func TestEndpointPoolRoundRobin(t *testing.T) {
	pool := NewEndpointPool([]string{"http://a", "http://b", "http://c"})

	next, previous := pool.Next()
	assert.Equal(t, "http://a", next)
	assert.Empty(t, previous)

	pool.SetCurrent("http://b")
	next, previous = pool.Next()
	assert.Equal(t, "http://c", next)
	assert.Equal(t, "http://b", previous)

	next, _ = pool.Next()
	assert.Equal(t, "http://a", next)
	assert.Equal(t, "http://a", pool.Current())
}

func TestEndpointPoolUnknownCurrentMovesToFirst(t *testing.T) {
	pool := NewEndpointPool([]string{"http://a", "http://b"})
	pool.SetCurrent("http://fallback")

	next, previous := pool.Next()

	assert.Equal(t, "http://a", next)
	assert.Equal(t, "http://fallback", previous)
}

func TestEndpointPoolEmpty(t *testing.T) {
	pool := NewEndpointPool(nil)

	next, previous := pool.Next()

	assert.Empty(t, next)
	assert.Empty(t, previous)
	assert.Empty(t, pool.First())
	assert.Empty(t, pool.All())
}

func TestEndpointPoolAllIsACopy(t *testing.T) {
	pool := NewEndpointPool([]string{"http://a"})

	all := pool.All()
	all[0] = "http://mutated"

	assert.Equal(t, "http://a", pool.First())
}
