package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// codeLimiter throttles verification-code requests per phone number.
// Entries older than an hour are pruned opportunistically so the map does not
// grow without bound.
type codeLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newCodeLimiter() *codeLimiter {
	return &codeLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Every(time.Minute), // 1 code/min sustained
		burst:    3,
	}
}

// Allow reports whether a code request for phone may proceed.
func (l *codeLimiter) Allow(phone string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.limiters[phone]
	if !ok {
		if len(l.limiters) > 1000 {
			l.prune(now)
		}
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[phone] = entry
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}

func (l *codeLimiter) prune(now time.Time) {
	for phone, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > time.Hour {
			delete(l.limiters, phone)
		}
	}
}
