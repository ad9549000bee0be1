package platform

import (
	"context"
	"log/slog"
	"time"
)

// Retry calls fn up to attempts times, waiting delay between failures.
// It stops early when the context is cancelled and returns the context
// error in that case. With attempts <= 0 fn is never called.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}

		slog.Warn("attempt failed",
			"component", "platform",
			"operation", "retry",
			"attempt", i+1,
			"attempts", attempts,
			"error", lastErr,
		)

		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
