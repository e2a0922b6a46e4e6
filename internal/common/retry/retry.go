// Package retry implements the bounded exponential backoff used around
// language-model calls. The policy knows nothing about its callers; what
// counts as a retryable failure is supplied as a predicate.
package retry

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted signals that every attempt failed with a retryable error.
// Callers treat it as "backend degraded, apply fallback" rather than as a
// hard failure.
var ErrExhausted = errors.New("retry budget exhausted")

// Policy is a reusable backoff policy. The zero value is not useful; use
// NewPolicy or set MaxRetries and BaseDelay explicitly. A Policy holds no
// per-call state and is safe for concurrent use.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPolicy returns a Policy with the pipeline defaults (3 attempts, 1s base).
func NewPolicy(maxRetries int, baseDelay time.Duration) Policy {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return Policy{MaxRetries: maxRetries, BaseDelay: baseDelay}
}

// Do runs op up to MaxRetries times. Failures for which retryable returns
// false propagate immediately and unchanged. Retryable failures trigger a
// sleep of BaseDelay*2^attempt before the next try; when the budget runs out
// the last error is swallowed and ErrExhausted is returned instead.
func (p Policy) Do(ctx context.Context, op func() error, retryable func(error) bool) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = defaultSleep
	}

	for attempt := 0; attempt < p.MaxRetries; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		if attempt < p.MaxRetries-1 {
			delay := p.BaseDelay * (1 << attempt)
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}
	}

	return ErrExhausted
}

func defaultSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
