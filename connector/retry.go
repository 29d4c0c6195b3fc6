package connector

import (
	"context"
	"time"
)

// retryConnect reattempts connectFn with doubling delays until it succeeds,
// the attempt budget runs out, or the context is done. The last connection
// error is returned, not the context error, unless cancellation interrupted
// a wait.
func retryConnect(ctx context.Context, policy RetryConfig, connectFn func(context.Context) (Connection, error)) (Connection, error) {
	attempts := policy.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	delay := policy.BaseDelay
	if delay <= 0 {
		delay = time.Second
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		conn, err := connectFn(ctx)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			delay *= 2
			if policy.MaxDelay > 0 && delay > policy.MaxDelay {
				delay = policy.MaxDelay
			}
		}
	}
	return nil, lastErr
}
