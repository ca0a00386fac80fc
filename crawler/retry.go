package crawler

import "time"

type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     2 * time.Second,
	}
}

// GetRetryDelay is the wait before the next attempt, given how many attempts have failed so far.
func (p RetryPolicy) GetRetryDelay(attemptsMade int) time.Duration {
	if attemptsMade <= 0 {
		return 0
	}
	return p.Backoff
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}
