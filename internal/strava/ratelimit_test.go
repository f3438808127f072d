package strava

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestRateLimiter_UpdateFromHeaders(t *testing.T) {
	tests := []struct {
		name      string
		limit     string
		usage     string
		wantShort int
		wantDaily int
	}{
		{"both headers", "200,2000", "50,100", 150, 1900},
		{"usage only", "", "10,20", 90, 980},
		{"malformed usage ignored", "", "abc", 100, 1000},
		{"single value ignored", "", "10", 100, 1000},
		{"spaces tolerated", "", "10, 20", 90, 980},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRateLimiter()
			h := http.Header{}
			if tt.limit != "" {
				h.Set("X-RateLimit-Limit", tt.limit)
			}
			h.Set("X-RateLimit-Usage", tt.usage)

			r.UpdateFromHeaders(h)

			short, daily := r.Status()
			if short != tt.wantShort || daily != tt.wantDaily {
				t.Errorf("Status() = (%d, %d), want (%d, %d)", short, daily, tt.wantShort, tt.wantDaily)
			}
		})
	}
}

func TestRateLimiter_WaitCountsRequests(t *testing.T) {
	r := NewRateLimiter()
	r.minInterval = 0

	for i := 0; i < 3; i++ {
		if err := r.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}

	short, daily := r.Usage()
	if short != 3 || daily != 3 {
		t.Errorf("Usage() = (%d, %d), want (3, 3)", short, daily)
	}
}

func TestRateLimiter_WaitHonoursContextWhenFull(t *testing.T) {
	r := NewRateLimiter()
	r.UpdateFromHeaders(http.Header{"X-Ratelimit-Usage": []string{"100,100"}})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := r.Wait(ctx); err != context.DeadlineExceeded {
		t.Errorf("Wait() error = %v, want %v", err, context.DeadlineExceeded)
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	r := NewRateLimiter()
	r.minInterval = 0
	r.now = func() time.Time { return now }
	r.short.usage = r.short.limit
	r.short.resetsAt = now.Add(-time.Second)

	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	short, _ := r.Usage()
	if short != 1 {
		t.Errorf("short usage after reset = %d, want 1", short)
	}
	if !r.short.resetsAt.Equal(now.Add(15 * time.Minute)) {
		t.Errorf("short window resets at %v, want %v", r.short.resetsAt, now.Add(15*time.Minute))
	}
}
