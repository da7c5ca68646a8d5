package middleware

import "time"

// SetClock replaces the time source of a RateLimiter in tests.
func (rl *RateLimiter) SetClock(now func() time.Time) {
	rl.now = now
}

// Visitors reports how many client limiters are tracked.
func (rl *RateLimiter) Visitors() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}
