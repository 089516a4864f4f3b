// Package ratelimit provides per-key token bucket rate limiting for MCP
// tools and HTTP clients.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// sweepInterval is how many Allow calls pass between idle-bucket sweeps.
const sweepInterval = 1024

// Limiter implements a per-key token bucket rate limiter.
// Each key gets its own bucket with the configured rate and burst.
// Buckets that have refilled to burst are indistinguishable from new ones
// and are dropped periodically, so keys may come from an unbounded set such
// as client addresses. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64          // tokens per second
	burst   int              // max burst size (also initial token count)
	nowFunc func() time.Time // injectable clock for testing
	calls   int              // Allow calls since the last sweep
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// NewLimiter creates a rate limiter with the given rate (tokens/sec) and burst size.
// The burst size also serves as the initial number of tokens available.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// Allow checks if a request for the given key should be allowed.
// Returns true if allowed, false if rate limited.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()

	l.calls++
	if l.calls >= sweepInterval {
		l.calls = 0
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		// First request for this key: start with full burst
		b = &bucket{
			tokens:    float64(l.burst),
			lastCheck: now,
		}
		l.buckets[key] = b
	}

	// Refill tokens based on elapsed time
	elapsed := now.Sub(b.lastCheck).Seconds()
	if elapsed > 0 {
		b.tokens += l.rate * elapsed
		if b.tokens > float64(l.burst) {
			b.tokens = float64(l.burst)
		}
		b.lastCheck = now
	}

	// Check if we have at least 1 token
	if b.tokens < 1.0 {
		return false
	}

	b.tokens--
	return true
}

// sweep drops buckets that would be full at now. With a non-positive rate
// buckets never refill and are kept. Caller holds l.mu.
func (l *Limiter) sweep(now time.Time) {
	if l.rate <= 0 {
		return
	}

	for key, b := range l.buckets {
		missing := float64(l.burst) - b.tokens
		refill := time.Duration(missing / l.rate * float64(time.Second))
		if now.Sub(b.lastCheck) >= refill {
			delete(l.buckets, key)
		}
	}
}

// ToolLimiters maps tool names to their rate limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters creates the default set of per-tool rate limiters.
// Reads are cheap, so the limits only stop runaway polling loops.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"sim_browse": NewLimiter(5.0, 20),  // 300/minute, burst 20
		"sim_read":   NewLimiter(20.0, 50), // 1200/minute, burst 50
		"sim_status": NewLimiter(1.0, 5),   // 60/minute, burst 5
	}
}

// CheckLimit checks the rate limit for a given tool name.
// Returns nil if allowed, or an error if rate limited.
// Tools without a configured limiter are always allowed.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil // No limiter configured = no limit
	}

	if !limiter.Allow(toolName) {
		return fmt.Errorf("rate limit exceeded for %s, please try again shortly", toolName)
	}

	return nil
}
