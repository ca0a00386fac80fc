package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetryPolicy(t *testing.T) {
	policy := DefaultRetryPolicy()

	require.Equal(t, 3, policy.attempts())
	require.Equal(t, time.Duration(0), policy.GetRetryDelay(0))
	require.Equal(t, 2*time.Second, policy.GetRetryDelay(1))
	require.Equal(t, 2*time.Second, policy.GetRetryDelay(2))
	require.Equal(t, 1, RetryPolicy{MaxAttempts: 0, Backoff: 0}.attempts())
}

func TestRealClockCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := RealClock{}.Sleep(ctx, time.Hour)

	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), time.Minute)
}

func TestRealClockZero(t *testing.T) {
	require.NoError(t, RealClock{}.Sleep(context.Background(), 0))
}
