//go:build unit

package middleware

import "time"

func (rl *RateLimiter) SetClock(now func() time.Time) { rl.now = now }

func (rl *RateLimiter) VisitorCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}
