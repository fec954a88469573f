package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/shopgraph/shopgraph-backend/internal/platform/logger"
)

// Poll calls check until it succeeds, ctx is done, or attempts run out,
// waiting a constant delay between attempts.
func Poll(ctx context.Context, name string, attempts int, delay time.Duration, log *logger.Logger, check func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	if log == nil {
		log = logger.Nop()
	}

	log.Info("waiting for dependency", "dependency", name, "max_attempts", attempts)

	tries := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		tries++
		return struct{}{}, check(ctx)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(delay)),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Debug("dependency not ready", "dependency", name, "attempt", tries, "retry_in", next, "error", err)
		}),
	)
	if err == nil {
		log.Info("dependency ready", "dependency", name, "attempt", tries)
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%s not ready: %w", name, ctx.Err())
	}
	return fmt.Errorf("%s not ready after %d attempts: %w", name, tries, err)
}
