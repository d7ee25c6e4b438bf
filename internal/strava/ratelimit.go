package strava

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Strava allows 100 requests per 15 minutes and 1000 per day
const (
	defaultShortLimit = 100
	defaultDailyLimit = 1000
	shortWindow       = 15 * time.Minute
	minInterval       = 150 * time.Millisecond
)

// quota is one fixed rate limit window
type quota struct {
	limit    int
	usage    int
	resetsAt time.Time
	next     func(now time.Time) time.Time
}

func (q *quota) roll(now time.Time) {
	if now.After(q.resetsAt) {
		q.usage = 0
		q.resetsAt = q.next(now)
	}
}

func (q *quota) exhausted() bool {
	return q.usage >= q.limit
}

// RateLimiter paces requests under the 15 minute and daily Strava quotas
type RateLimiter struct {
	mu          sync.Mutex
	short       quota
	daily       quota
	lastRequest time.Time
	now         func() time.Time
}

// NewRateLimiter creates a rate limiter with Strava's default quotas
func NewRateLimiter() *RateLimiter {
	return newRateLimiter(time.Now)
}

func newRateLimiter(now func() time.Time) *RateLimiter {
	t := now()
	nextShort := func(t time.Time) time.Time { return t.Add(shortWindow) }
	nextDaily := func(t time.Time) time.Time { return t.Truncate(24 * time.Hour).Add(24 * time.Hour) }
	return &RateLimiter{
		short: quota{limit: defaultShortLimit, resetsAt: nextShort(t), next: nextShort},
		daily: quota{limit: defaultDailyLimit, resetsAt: nextDaily(t), next: nextDaily},
		now:   now,
	}
}

// Wait blocks until a request fits in both quotas, or ctx is done
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		delay := r.reserve()
		if delay == 0 {
			return nil
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// reserve takes a request slot and returns 0, or returns how long to wait before retrying
func (r *RateLimiter) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.short.roll(now)
	r.daily.roll(now)

	switch {
	case r.daily.exhausted():
		return r.daily.resetsAt.Sub(now) + time.Millisecond
	case r.short.exhausted():
		return r.short.resetsAt.Sub(now) + time.Millisecond
	}
	if since := now.Sub(r.lastRequest); since < minInterval {
		return minInterval - since
	}

	r.short.usage++
	r.daily.usage++
	r.lastRequest = now
	return 0
}

// UpdateFromHeaders syncs usage and limits with the server's view.
// Strava sends X-RateLimit-Limit: "100,1000" and X-RateLimit-Usage: "34,512".
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if short, daily, ok := parsePair(h.Get("X-RateLimit-Usage")); ok {
		r.short.usage, r.daily.usage = short, daily
	}
	if short, daily, ok := parsePair(h.Get("X-RateLimit-Limit")); ok {
		r.short.limit, r.daily.limit = short, daily
	}
}

func parsePair(v string) (int, int, bool) {
	parts := strings.Split(v, ",")
	if len(parts) < 2 {
		return 0, 0, false
	}
	a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return a, b, true
}

// Status returns the requests left in the 15 minute and daily windows
func (r *RateLimiter) Status() (shortRemaining, dailyRemaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.short.limit - r.short.usage, r.daily.limit - r.daily.usage
}
