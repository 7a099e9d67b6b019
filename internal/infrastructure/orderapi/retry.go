// internal/infrastructure/orderapi/retry.go
package orderapi

import (
	"context"
	"errors"
	"time"

	"github.com/your-org/storefront-checkout/internal/pkg/errs"
)

// RetryPolicy expresses retry behaviour as data: how many attempts, how long
// to wait between them, and which errors are worth retrying at all.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	Retryable   func(error) bool
}

// NoRetry performs exactly one attempt. Used for order creation and payment
// verification, where a repeat must be an explicit new attempt by the
// customer rather than an automatic replay.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

// DefaultRetryable retries transport failures and server errors. Client
// errors (4xx) are never retried; the request will not get better.
func DefaultRetryable(err error) bool {
	if errs.IsNetwork(err) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}

	return false
}

// Do runs fn up to MaxAttempts times, sleeping Backoff between attempts.
// The last error is returned unchanged so callers can classify it.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Backoff):
			}
		}

		if err = fn(); err == nil {
			return nil
		}

		if p.Retryable == nil || !p.Retryable(err) {
			return err
		}
	}

	return err
}
