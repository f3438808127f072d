package strava

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Strava rate limits:
// - 100 requests per 15 minutes
// - 1000 requests per day
const (
	DefaultShortLimit = 100
	DefaultDailyLimit = 1000
	shortWindow       = 15 * time.Minute
)

// window is one fixed rate-limit window
type window struct {
	limit    int
	usage    int
	resetsAt time.Time
}

func (w *window) full() bool {
	return w.usage >= w.limit
}

// RateLimiter manages Strava API rate limits. Safe for concurrent use;
// the sync service shares one limiter across its stream workers.
type RateLimiter struct {
	mu sync.Mutex

	short window
	daily window

	// Minimum interval between requests
	minInterval time.Duration
	lastRequest time.Time

	now func() time.Time
}

// NewRateLimiter creates a new rate limiter with Strava's limits
func NewRateLimiter() *RateLimiter {
	r := &RateLimiter{
		minInterval: 150 * time.Millisecond, // ~6.6 req/s max
		now:         time.Now,
	}
	now := r.now()
	r.short = window{limit: DefaultShortLimit, resetsAt: now.Add(shortWindow)}
	r.daily = window{limit: DefaultDailyLimit, resetsAt: nextMidnight(now)}
	return r
}

func nextMidnight(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
}

// resetExpired clears windows whose reset time has passed. Caller holds mu.
func (r *RateLimiter) resetExpired(now time.Time) {
	if now.After(r.short.resetsAt) {
		r.short.usage = 0
		r.short.resetsAt = now.Add(shortWindow)
	}
	if now.After(r.daily.resetsAt) {
		r.daily.usage = 0
		r.daily.resetsAt = nextMidnight(now)
	}
}

// delay returns how long the next request must wait. Caller holds mu.
func (r *RateLimiter) delay(now time.Time) time.Duration {
	switch {
	case r.daily.full():
		return r.daily.resetsAt.Sub(now)
	case r.short.full():
		return r.short.resetsAt.Sub(now)
	}
	if elapsed := now.Sub(r.lastRequest); elapsed < r.minInterval {
		return r.minInterval - elapsed
	}
	return 0
}

// Wait blocks until a request can be made without exceeding rate limits
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		now := r.now()
		r.resetExpired(now)

		wait := r.delay(now)
		if wait <= 0 {
			break
		}

		r.mu.Unlock()
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			r.mu.Lock()
			return ctx.Err()
		}
		r.mu.Lock()
	}

	r.short.usage++
	r.daily.usage++
	r.lastRequest = r.now()

	return nil
}

// UpdateFromHeaders updates rate limit state from Strava response headers
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Strava returns: X-RateLimit-Limit: "100,1000" and X-RateLimit-Usage: "34,512"
	if short, daily, ok := parsePair(h.Get("X-RateLimit-Usage")); ok {
		r.short.usage = short
		r.daily.usage = daily
	}
	if short, daily, ok := parsePair(h.Get("X-RateLimit-Limit")); ok {
		r.short.limit = short
		r.daily.limit = daily
	}
}

func parsePair(v string) (first, second int, ok bool) {
	parts := strings.Split(v, ",")
	if len(parts) < 2 {
		return 0, 0, false
	}
	first, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	second, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return first, second, true
}

// Status returns current rate limit status
func (r *RateLimiter) Status() (shortRemaining, dailyRemaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.short.limit - r.short.usage, r.daily.limit - r.daily.usage
}

// Usage returns current usage counts
func (r *RateLimiter) Usage() (shortUsage, dailyUsage int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.short.usage, r.daily.usage
}
