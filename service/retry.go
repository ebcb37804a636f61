package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const maxStoreRetries = 3

// withRetry runs fn, retrying with exponential backoff while the error is a
// transient store failure. Every mutating operation re-checks its
// preconditions inside its transaction, which is what makes the repeat safe.
func withRetry(ctx context.Context, fn func() error) error {
	operation := func() error {
		err := fn()
		if err != nil && !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxInterval = time.Second

	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, maxStoreRetries), ctx))
}
