package util

import (
	"context"
	"fmt"
	"time"
)

func Retry[T any](f func() (T, error), maxRetries int, d time.Duration) (v T, err error) {
	return RetryContext(context.Background(), func(context.Context) (T, error) { return f() }, maxRetries, d)
}

// RetryContext calls f up to maxRetries+1 times, doubling the delay d after
// every failed attempt.
func RetryContext[T any](ctx context.Context, f func(context.Context) (T, error), maxRetries int, d time.Duration) (v T, err error) {
	for i := 0; ; i++ {
		if v, err = f(ctx); err == nil {
			return v, nil
		} else if i == maxRetries {
			return v, fmt.Errorf("max retries reached: %w", err)
		}
		t := time.NewTimer(d << i)
		select {
		case <-ctx.Done():
			t.Stop()
			var zero T
			return zero, ctx.Err()
		case <-t.C:
		}
	}
}
