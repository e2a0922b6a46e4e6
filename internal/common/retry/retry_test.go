package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysRetryable(error) bool { return false }

func TestDo_SuccessFirstAttempt(t *testing.T) {
	p := NewPolicy(3, time.Second)
	calls := 0

	err := p.Do(context.Background(), func() error {
		calls++
		return nil
	}, alwaysRetryable)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_NonRetryableFailurePropagatesUnchanged(t *testing.T) {
	p := NewPolicy(3, time.Second)
	boom := errors.New("invalid api key")
	calls := 0

	err := p.Do(context.Background(), func() error {
		calls++
		return boom
	}, func(err error) bool { return false })

	assert.Equal(t, 1, calls)
	assert.Same(t, boom, err)
}

func TestDo_RetryableFailureExhaustsBudget(t *testing.T) {
	p := NewPolicy(3, time.Second)

	var slept []time.Duration
	p.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return errors.New("api overloaded (529)")
	}, func(err error) bool { return true })

	assert.Equal(t, 3, calls, "op must run exactly MaxRetries times")
	assert.ErrorIs(t, err, ErrExhausted)

	// Sleeps happen after attempts 0 and 1 only: 1s then 2s.
	require.Len(t, slept, 2)
	assert.Equal(t, time.Second, slept[0])
	assert.Equal(t, 2*time.Second, slept[1])
}

func TestDo_RecoveryAfterRetry(t *testing.T) {
	p := NewPolicy(3, 10*time.Millisecond)
	p.sleep = func(context.Context, time.Duration) error { return nil }

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("overloaded")
		}
		return nil
	}, func(err error) bool { return true })

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	p := NewPolicy(3, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := p.Do(ctx, func() error {
		calls++
		return errors.New("overloaded")
	}, func(err error) bool { return true })

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPolicy_FloorsMaxRetries(t *testing.T) {
	p := NewPolicy(0, time.Second)
	assert.Equal(t, 1, p.MaxRetries)
}
