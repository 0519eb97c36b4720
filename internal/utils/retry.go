package utils

import (
	"context"
	"fmt"
	"time"

	"alerting-destinations/internal/logging"
)

// Retry calls fn until it succeeds, maxAttempts is reached or ctx is done.
// The wait between attempts doubles each time, starting at delay.
func Retry(ctx context.Context, logger *logging.Logger, maxAttempts int, delay time.Duration, fn func(ctx context.Context) error) error {
	var lastErr error
	wait := delay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		logger.Warnf("Attempt %d/%d failed: %v", attempt, maxAttempts, err)
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up after %d attempts: %w", attempt, ctx.Err())
		case <-time.After(wait):
		}
		wait *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
