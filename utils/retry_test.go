package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLogger()}

	calls := 0
	err := r.Do("flaky", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, Logger: NewLogger()}

	boom := errors.New("still down")
	err := r.Do("hopeless", func() error { return boom })

	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "after 2 attempts")
}

func TestRetryDelayCapped(t *testing.T) {
	r := &RetryConfig{BaseDelay: time.Second, MaxDelay: 3 * time.Second}

	require.Equal(t, 2*time.Second, r.nextDelay(time.Second))
	require.Equal(t, 3*time.Second, r.nextDelay(2*time.Second))
	require.Equal(t, 3*time.Second, r.nextDelay(3*time.Second))

	uncapped := &RetryConfig{BaseDelay: time.Second}
	require.Equal(t, 8*time.Second, uncapped.nextDelay(4*time.Second))
}
