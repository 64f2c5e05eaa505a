// Package ratelimit implements per-client token buckets shared by the SSH and
// HTTP surfaces.
package ratelimit

import (
	"sync"
	"time"
)

const (
	defaultPerMinute = 30
	defaultBurst     = 10
	maxTrackedKeys   = 10000
)

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter enforces limitPerMinute requests per key with bursts up to burst.
// It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]bucket
	rate    float64
	burst   float64
	now     func() time.Time
}

// New builds a Limiter. Non-positive arguments fall back to 30/min, burst 10.
func New(limitPerMinute, burst int) *Limiter {
	if limitPerMinute <= 0 {
		limitPerMinute = defaultPerMinute
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	return &Limiter{
		buckets: make(map[string]bucket),
		rate:    float64(limitPerMinute) / 60.0,
		burst:   float64(burst),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Allow consumes one token for key, reporting false when the bucket is empty.
func (l *Limiter) Allow(key string) bool {
	return l.AllowAt(key, l.now())
}

// AllowAt is Allow with an explicit clock reading.
func (l *Limiter) AllowAt(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= maxTrackedKeys {
			l.evictLocked(now)
		}
		b = bucket{tokens: l.burst, last: now}
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens = min(b.tokens+elapsed*l.rate, l.burst)
		b.last = now
	}

	if b.tokens < 1 {
		l.buckets[key] = b
		return false
	}

	b.tokens--
	l.buckets[key] = b
	return true
}

// Tracked reports how many keys currently hold a bucket.
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// evictLocked drops buckets that would have refilled completely by now; they
// carry no state a fresh bucket would not.
func (l *Limiter) evictLocked(now time.Time) {
	for key, b := range l.buckets {
		if b.tokens+now.Sub(b.last).Seconds()*l.rate >= l.burst {
			delete(l.buckets, key)
		}
	}
}
