package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// withRetry runs op up to four times (one initial attempt plus three
// retries), doubling the delay between attempts starting from initial. Only
// transient network failures are retried; any other error stops immediately
// and is returned as-is.
func withRetry(ctx context.Context, initial time.Duration, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initial
	policy.RandomizationFactor = 0
	policy.Multiplier = 2
	policy.MaxInterval = initial * 8
	policy.MaxElapsedTime = 0

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(policy, retryMax), ctx))
}
