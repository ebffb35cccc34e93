package infrastructure

import (
	"sync"
	"time"
)

// CallRateLimiter implements token bucket rate limiting per business, used to
// protect the public inbound-call webhook.
type CallRateLimiter struct {
	mu          sync.RWMutex
	buckets     map[string]*tokenBucket
	rate        float64 // tokens per second
	maxTokens   float64 // burst capacity
	cleanupTick time.Duration
}

type tokenBucket struct {
	tokens     float64
	lastUpdate time.Time
}

// NewCallRateLimiter creates a rate limiter with specified rate and burst
// rate: calls per second allowed
// burst: maximum burst capacity
func NewCallRateLimiter(rate float64, burst int) *CallRateLimiter {
	rl := &CallRateLimiter{
		buckets:     make(map[string]*tokenBucket),
		rate:        rate,
		maxTokens:   float64(burst),
		cleanupTick: 5 * time.Minute,
	}

	// Start cleanup goroutine
	go rl.cleanup()

	return rl
}

// Allow checks if a business may receive another call event (consumes 1 token if allowed)
func (rl *CallRateLimiter) Allow(businessID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, exists := rl.buckets[businessID]
	now := time.Now()

	if !exists {
		// Create new bucket with full tokens
		rl.buckets[businessID] = &tokenBucket{
			tokens:     rl.maxTokens - 1, // Consume 1 token
			lastUpdate: now,
		}
		return true
	}

	// Refill tokens based on time elapsed
	elapsed := now.Sub(bucket.lastUpdate).Seconds()
	bucket.tokens += elapsed * rl.rate
	if bucket.tokens > rl.maxTokens {
		bucket.tokens = rl.maxTokens
	}
	bucket.lastUpdate = now

	// Check if we have a token
	if bucket.tokens >= 1 {
		bucket.tokens -= 1
		return true
	}

	return false
}

// Reset removes rate limit state for a business
func (rl *CallRateLimiter) Reset(businessID string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, businessID)
}

// cleanup removes stale buckets periodically
func (rl *CallRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupTick)
	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for businessID, bucket := range rl.buckets {
			// Remove buckets not used in last 10 minutes
			if now.Sub(bucket.lastUpdate) > 10*time.Minute {
				delete(rl.buckets, businessID)
			}
		}
		rl.mu.Unlock()
	}
}

// GetStats returns rate limiter statistics
func (rl *CallRateLimiter) GetStats() map[string]interface{} {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	return map[string]interface{}{
		"active_businesses": len(rl.buckets),
		"rate":              rl.rate,
		"burst":             rl.maxTokens,
	}
}
