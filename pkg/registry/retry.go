package registry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	log "github.com/lucas-albers-lz4/uptag/pkg/log"
)

// RetryPolicy defines how failed registry requests are repeated. Only
// transient failures are retried; see retryable.
type RetryPolicy struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	jitter       bool
}

// RetryOption configures retry behavior.
type RetryOption func(*RetryPolicy)

// WithMaxAttempts sets the maximum number of attempts, first try included.
func WithMaxAttempts(n int) RetryOption {
	return func(p *RetryPolicy) {
		p.maxAttempts = n
	}
}

// WithInitialDelay sets the delay before the first retry.
func WithInitialDelay(d time.Duration) RetryOption {
	return func(p *RetryPolicy) {
		p.initialDelay = d
	}
}

// WithMaxDelay caps the backoff delay.
func WithMaxDelay(d time.Duration) RetryOption {
	return func(p *RetryPolicy) {
		p.maxDelay = d
	}
}

// WithJitter enables jitter to prevent thundering herd.
func WithJitter(enabled bool) RetryOption {
	return func(p *RetryPolicy) {
		p.jitter = enabled
	}
}

// NewRetryPolicy creates a retry policy with exponential backoff.
func NewRetryPolicy(opts ...RetryOption) *RetryPolicy {
	p := &RetryPolicy{
		maxAttempts:  4,
		initialDelay: 500 * time.Millisecond,
		maxDelay:     8 * time.Second,
		multiplier:   2.0,
		jitter:       true,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Execute runs fn until it succeeds, fails permanently, or the attempt
// budget runs out. A RateLimitedError carrying a Retry-After hint raises
// the backoff delay to at least that hint.
func (p *RetryPolicy) Execute(ctx context.Context, operation string, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := fn()
		if err == nil {
			if attempt > 0 {
				log.Debug("operation succeeded after retry",
					"operation", operation,
					"attempt", attempt+1,
					"max_attempts", p.maxAttempts)
			}
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return err
		}
		if attempt == p.maxAttempts-1 {
			break
		}

		delay := p.calculateDelay(attempt)
		var rlErr *RateLimitedError
		if errors.As(err, &rlErr) && rlErr.RetryAfter > delay {
			delay = rlErr.RetryAfter
		}

		log.Debug("operation failed, retrying",
			"operation", operation,
			"error", err,
			"attempt", attempt+1,
			"max_attempts", p.maxAttempts,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	log.Debug("operation failed after all retries",
		"operation", operation,
		"error", lastErr,
		"attempts", p.maxAttempts)

	return lastErr
}

// calculateDelay computes the backoff delay for the given attempt.
func (p *RetryPolicy) calculateDelay(attempt int) time.Duration {
	delay := float64(p.initialDelay) * math.Pow(p.multiplier, float64(attempt))

	if delay > float64(p.maxDelay) {
		delay = float64(p.maxDelay)
	}

	// Jitter between 0.5x and 1.5x the delay
	if p.jitter {
		delay *= 0.5 + rand.Float64()
	}

	return time.Duration(delay)
}
