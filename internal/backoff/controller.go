// Package backoff computes sleep durations after consecutive rate-limited cycles.
package backoff

import (
	"math/rand"
	"time"
)

// Default configuration values.
const (
	DefaultBase      = 60 * time.Second
	DefaultMax       = 300 * time.Second
	DefaultMaxJitter = 10 * time.Second
)

// Controller tracks consecutive rate-limit events.
// Delay(n) = min(base * 2^(n-1), max). Jitter is not part of the state.
type Controller struct {
	base        time.Duration
	max         time.Duration
	consecutive int
}

// NewController creates a controller. Non-positive values fall back to defaults.
func NewController(base, max time.Duration) *Controller {
	if base <= 0 {
		base = DefaultBase
	}
	if max <= 0 {
		max = DefaultMax
	}
	return &Controller{base: base, max: max}
}

// Fail records a rate-limited cycle and returns the new counter and its delay.
func (c *Controller) Fail() (int, time.Duration) {
	c.consecutive++
	return c.consecutive, c.Delay(c.consecutive)
}

// Succeed resets the counter. It reports whether the counter was non-zero.
func (c *Controller) Succeed() bool {
	recovered := c.consecutive > 0
	c.consecutive = 0
	return recovered
}

// Consecutive returns the current counter.
func (c *Controller) Consecutive() int {
	return c.consecutive
}

// Delay returns the capped exponential delay for the n-th consecutive event.
func (c *Controller) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	delay := c.base
	for i := 1; i < n; i++ {
		delay *= 2
		if delay >= c.max {
			return c.max
		}
	}
	if delay > c.max {
		return c.max
	}
	return delay
}

// Jitter returns a uniform random duration in [0, max).
func Jitter(r *rand.Rand, max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(r.Int63n(int64(max)))
}
