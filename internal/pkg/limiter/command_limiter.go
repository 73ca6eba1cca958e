/*
Package limiter provides rate limiting for outbound gateway commands.

It uses the Token Bucket algorithm (rate.Limiter), one bucket per command
class, so a misbehaving rendering layer cannot flood the platform backend
with create/delete/leave calls.
*/
package limiter

import (
	"sync"

	"golang.org/x/time/rate"

	"lobbysync/internal/pkg/errs"
)

// CommandLimiter implements per-command-class rate limiting.
type CommandLimiter struct {
	// mu protects concurrent access to the limits map.
	mu sync.RWMutex

	// limits stores the map from command class to its *rate.Limiter instance.
	limits map[string]*rate.Limiter

	// r is the allowed sustained rate (events per second) per command class.
	r rate.Limit

	// b is the burst size (token bucket capacity) per command class.
	b int
}

// NewCommandLimiter creates a CommandLimiter allowing rate r with burst b for
// each distinct command class.
func NewCommandLimiter(r rate.Limit, b int) *CommandLimiter {
	return &CommandLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
	}
}

// getLimiter retrieves the limiter for the given command class, creating it
// on first use. Uses double-checked locking for concurrent-safe creation.
func (c *CommandLimiter) getLimiter(command string) *rate.Limiter {
	c.mu.RLock()
	limiter, exists := c.limits[command]
	c.mu.RUnlock()

	if !exists {
		c.mu.Lock()
		limiter, exists = c.limits[command]
		if !exists {
			limiter = rate.NewLimiter(c.r, c.b)
			c.limits[command] = limiter
		}
		c.mu.Unlock()
	}

	return limiter
}

// Allow reports whether the given command class may proceed now. When the
// bucket is empty it returns a typed rate-limit error instead of blocking;
// command issuers surface it to the caller rather than queueing work.
func (c *CommandLimiter) Allow(command string) *errs.CustomError {
	if !c.getLimiter(command).Allow() {
		return errs.NewError(errs.KeyRateLimited)
	}
	return nil
}
