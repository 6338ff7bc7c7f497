package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fast() []Option {
	return []Option{WithInitialDelay(time.Millisecond), WithMaxDelay(2 * time.Millisecond)}
}

func TestDo_Success(t *testing.T) {
	t.Parallel()
	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	var notified []int
	opts := append(fast(), WithNotify(func(attempt int, _ error, _ time.Duration) {
		notified = append(notified, attempt)
	}))
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("not found")
		}
		return nil
	}, opts...)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, notified)
}

func TestDo_MaxRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	cause := errors.New("persistent")
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return cause
	}, append(fast(), WithMaxRetries(2))...)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestDo_Permanent(t *testing.T) {
	t.Parallel()
	attempts := 0
	cause := errors.New("forbidden")
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return Permanent(cause)
	}, fast()...)
	require.ErrorIs(t, err, cause)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 1, attempts)
}

func TestDo_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Do(ctx, func(context.Context) error {
		attempts++
		cancel()
		return errors.New("retry me")
	}, WithInitialDelay(time.Hour))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDo_DelayIsCapped(t *testing.T) {
	t.Parallel()
	var delays []time.Duration
	_ = Do(context.Background(), func(context.Context) error {
		return errors.New("x")
	},
		WithMaxRetries(4),
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(3*time.Millisecond),
		WithMultiplier(2),
		WithNotify(func(_ int, _ error, next time.Duration) { delays = append(delays, next) }),
	)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond, 3 * time.Millisecond, 3 * time.Millisecond}, delays)
}

func TestUntil(t *testing.T) {
	t.Parallel()
	polls := 0
	err := Until(context.Background(), func(context.Context) (bool, error) {
		polls++
		return polls == 2, nil
	}, fast()...)
	require.NoError(t, err)
	assert.Equal(t, 2, polls)

	err = Until(context.Background(), func(context.Context) (bool, error) {
		return false, nil
	}, append(fast(), WithMaxRetries(1))...)
	require.ErrorIs(t, err, ErrNotDone)
}

func TestPermanent_Nil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Permanent(nil))
	assert.False(t, IsPermanent(errors.New("plain")))
	perr := Permanent(errors.New("inner"))
	assert.Equal(t, "inner", perr.Error())
	assert.Equal(t, "inner", errors.Unwrap(perr).Error())
}
