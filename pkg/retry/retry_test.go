package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTemporary = errors.New("temporary")

func noPause(int) time.Duration { return 0 }

func TestDo(t *testing.T) {
	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		var calls int
		var retried []int
		err := Do(t.Context(), Policy{
			MaxAttempts: 3,
			Backoff:     noPause,
			OnRetry: func(attempt int, err error) {
				assert.ErrorIs(t, err, errTemporary)
				retried = append(retried, attempt)
			},
		}, func() error {
			calls++
			if calls < 3 {
				return errTemporary
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []int{1, 2}, retried)
	})

	t.Run("ReturnsLastError", func(t *testing.T) {
		var calls int
		err := Do(t.Context(), Policy{
			MaxAttempts: 2,
			Backoff:     noPause,
		}, func() error {
			calls++
			return errTemporary
		})
		assert.ErrorIs(t, err, errTemporary)
		assert.Equal(t, 2, calls)
	})

	t.Run("StopsOnPermanentError", func(t *testing.T) {
		errPermanent := errors.New("permanent")
		var calls int
		err := Do(t.Context(), Policy{
			MaxAttempts: 5,
			Backoff:     noPause,
			Retryable:   func(err error) bool { return errors.Is(err, errTemporary) },
		}, func() error {
			calls++
			return errPermanent
		})
		assert.ErrorIs(t, err, errPermanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("DeadlineIsNotRetried", func(t *testing.T) {
		var calls int
		err := Do(t.Context(), Policy{MaxAttempts: 5, Backoff: noPause},
			func() error {
				calls++
				return context.DeadlineExceeded
			})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, calls)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		err := Do(ctx, Policy{}, func() error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("CanceledDuringPause", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		err := Do(ctx, Policy{
			MaxAttempts: 3,
			Backoff:     func(int) time.Duration { return time.Hour },
			OnRetry:     func(int, error) { cancel() },
		}, func() error { return errTemporary })
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, errTemporary)
	})
}

func TestDoWithResult(t *testing.T) {
	var calls int
	v, err := DoWithResult(t.Context(), Policy{MaxAttempts: 2, Backoff: noPause},
		func() (int, error) {
			calls++
			if calls == 1 {
				return 0, errTemporary
			}
			return 42, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff(100*time.Millisecond, time.Second)

	first := b(1)
	assert.GreaterOrEqual(t, first, 100*time.Millisecond)
	assert.Less(t, first, 150*time.Millisecond)

	third := b(3)
	assert.GreaterOrEqual(t, third, 400*time.Millisecond)
	assert.Less(t, third, 600*time.Millisecond)

	for _, attempt := range []int{5, 64, 1 << 20} {
		d := b(attempt)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 1500*time.Millisecond)
	}
}
