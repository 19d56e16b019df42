// Package ratelimiter implements a token bucket rate limiter.
package ratelimiter

import (
	"sync"
	"time"
)

// RateLimiter limits the rate of operations.
type RateLimiter interface {
	TakeToken() bool
	Wait()
}

// TokenBucket is a thread-safe token bucket limiter.
// Tokens refill continuously at refillRate per second up to capacity.
type TokenBucket struct {
	capacity   int64
	tokens     int64
	refillRate int64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a bucket with the given capacity and per-second refill rate.
func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	if capacity <= 0 {
		capacity = 1
	}
	if refillRate <= 0 {
		refillRate = 1
	}
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// TakeToken attempts to take a token, returning false when the bucket is empty.
func (tb *TokenBucket) TakeToken() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	// Advance lastRefill only when whole tokens were granted, so
	// sub-interval polling does not discard the elapsed fraction.
	tokensToAdd := elapsed.Nanoseconds() * tb.refillRate / int64(time.Second)
	if tokensToAdd > 0 {
		if tb.tokens+tokensToAdd < tb.capacity {
			tb.tokens += tokensToAdd
		} else {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Wait blocks until a token becomes available.
func (tb *TokenBucket) Wait() {
	waitTime := time.Second / time.Duration(tb.refillRate)
	if waitTime < 100*time.Millisecond {
		waitTime = 100 * time.Millisecond
	}
	for !tb.TakeToken() {
		time.Sleep(waitTime)
	}
}
