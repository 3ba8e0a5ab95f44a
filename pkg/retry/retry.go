// Package retry repeats calls to dependencies that may be briefly unavailable,
// such as the database or schema registry during startup.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	defaultDelay    = 100 * time.Millisecond
	defaultMaxDelay = 5 * time.Second
)

// Backoff returns the pause before the next attempt. Attempts start at 1.
type Backoff func(attempt int) time.Duration

type Policy struct {
	MaxAttempts int
	Backoff     Backoff

	// Retryable reports whether err is worth another attempt.
	// Context errors are never retried when it is nil.
	Retryable func(err error) bool

	// OnRetry is called before each pause with the failed attempt number.
	OnRetry func(attempt int, err error)
}

func (p *Policy) normalize() {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.Backoff == nil {
		p.Backoff = ExponentialBackoff(defaultDelay, defaultMaxDelay)
	}
	if p.Retryable == nil {
		p.Retryable = notCanceled
	}
	if p.OnRetry == nil {
		p.OnRetry = func(int, error) {}
	}
}

func notCanceled(err error) bool {
	return !errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// ExponentialBackoff doubles delay on every attempt up to maxDelay
// and adds up to half of the pause as jitter.
func ExponentialBackoff(delay, maxDelay time.Duration) Backoff {
	return func(attempt int) time.Duration {
		base := delay
		for i := 1; i < attempt && base < maxDelay; i++ {
			base *= 2
		}
		base = min(base, maxDelay)
		if base <= 1 {
			return base
		}
		return base + time.Duration(rand.Int64N(int64(base/2)))
	}
}

// Do calls fn until it succeeds, returns an error that is not retryable,
// runs out of attempts or ctx is done.
func Do(ctx context.Context, p Policy, fn func() error) error {
	_, err := DoWithResult(ctx, p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult is [Do] for calls that produce a value.
func DoWithResult[T any](
	ctx context.Context, p Policy, fn func() (T, error),
) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	p.normalize()
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	var err error
	for attempt := 1; ; attempt++ {
		var result T
		result, err = fn()
		if err == nil {
			return result, nil
		}
		if attempt >= p.MaxAttempts || !p.Retryable(err) {
			return zero, err
		}

		p.OnRetry(attempt, err)
		timer.Reset(p.Backoff(attempt))
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%w: %w", ctx.Err(), err)
		case <-timer.C:
		}
	}
}
