package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallRateLimiterBurst(t *testing.T) {
	rl := NewCallRateLimiter(1, 3)

	assert.True(t, rl.Allow("biz1"))
	assert.True(t, rl.Allow("biz1"))
	assert.True(t, rl.Allow("biz1"))
	assert.False(t, rl.Allow("biz1"), "burst exhausted")
}

func TestCallRateLimiterPerBusinessIsolation(t *testing.T) {
	rl := NewCallRateLimiter(1, 1)

	assert.True(t, rl.Allow("biz1"))
	assert.False(t, rl.Allow("biz1"))

	// Another business has its own bucket.
	assert.True(t, rl.Allow("biz2"))
}

func TestCallRateLimiterReset(t *testing.T) {
	rl := NewCallRateLimiter(1, 1)

	assert.True(t, rl.Allow("biz1"))
	assert.False(t, rl.Allow("biz1"))

	rl.Reset("biz1")
	assert.True(t, rl.Allow("biz1"))
}

func TestCallRateLimiterStats(t *testing.T) {
	rl := NewCallRateLimiter(2, 5)

	rl.Allow("biz1")
	rl.Allow("biz2")

	stats := rl.GetStats()
	assert.Equal(t, 2, stats["active_businesses"])
	assert.Equal(t, float64(2), stats["rate"])
	assert.Equal(t, float64(5), stats["burst"])
}
