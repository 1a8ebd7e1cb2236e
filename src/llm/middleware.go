package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrCircuitOpen is returned by CircuitBreaker when it is rejecting calls.
var ErrCircuitOpen = errors.New("llm: circuit breaker open")

// circuitState is the breaker's internal state machine.
type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitHalfOpen
)

// CircuitBreaker wraps a Generator and trips open after a run of
// consecutive failures, rejecting calls for a cooldown window before
// allowing a single probe call through.
type CircuitBreaker struct {
	next Generator

	failureThreshold int
	cooldown         time.Duration

	mu       sync.Mutex
	state    circuitState
	failures int
	openedAt time.Time
}

// NewCircuitBreaker wraps next, tripping after failureThreshold consecutive
// failures and staying open for cooldown before probing again.
func NewCircuitBreaker(next Generator, failureThreshold int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{next: next, failureThreshold: failureThreshold, cooldown: cooldown}
}

func (c *CircuitBreaker) Generate(ctx context.Context, messages []Message, temperature float64) (string, error) {
	if !c.allow() {
		return "", ErrCircuitOpen
	}
	out, err := c.next.Generate(ctx, messages, temperature)
	c.record(err == nil)
	return out, err
}

func (c *CircuitBreaker) allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case circuitOpen:
		if time.Since(c.openedAt) >= c.cooldown {
			c.state = circuitHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

func (c *CircuitBreaker) record(success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if success {
		c.failures = 0
		c.state = circuitClosed
		return
	}

	c.failures++
	if c.state == circuitHalfOpen || c.failures >= c.failureThreshold {
		c.state = circuitOpen
		c.openedAt = time.Now()
	}
}

// RateLimiter wraps a Generator with a token-bucket limiter, blocking until
// a token is available or the context is cancelled.
type RateLimiter struct {
	next    Generator
	limiter *rate.Limiter
}

// NewRateLimiter allows requestsPerSecond sustained with the given burst.
func NewRateLimiter(next Generator, requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{next: next, limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

func (r *RateLimiter) Generate(ctx context.Context, messages []Message, temperature float64) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return r.next.Generate(ctx, messages, temperature)
}

// UsageTracker wraps a Generator, counting calls, failures, and total
// latency for operator-facing metrics.
type UsageTracker struct {
	next Generator

	mu       sync.Mutex
	calls    int64
	failures int64
	totalDur time.Duration
}

func NewUsageTracker(next Generator) *UsageTracker {
	return &UsageTracker{next: next}
}

func (u *UsageTracker) Generate(ctx context.Context, messages []Message, temperature float64) (string, error) {
	start := time.Now()
	out, err := u.next.Generate(ctx, messages, temperature)
	elapsed := time.Since(start)

	u.mu.Lock()
	u.calls++
	u.totalDur += elapsed
	if err != nil {
		u.failures++
	}
	u.mu.Unlock()

	return out, err
}

// Snapshot returns the current usage counters.
func (u *UsageTracker) Snapshot() (calls, failures int64, avgLatency time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.calls == 0 {
		return 0, 0, 0
	}
	return u.calls, u.failures, u.totalDur / time.Duration(u.calls)
}
