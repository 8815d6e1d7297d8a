// utils/retry.go
package utils

import (
	"context"
	"time"
)

// Retry runs fn up to attempts times with a fixed delay between attempts,
// returning nil on the first success. The last error is returned once the
// attempts are exhausted. The delay honors context cancellation.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err = fn(ctx); err == nil {
			return nil
		}
	}
	return err
}
