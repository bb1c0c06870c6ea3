package event

import (
	"context"
	"time"

	"github.com/DioGolang/fleettrack/pkg/logger"
	"github.com/DioGolang/fleettrack/pkg/metrics"
)

// Backoff returns the wait before retry number attempt (zero based).
func Backoff(base time.Duration, attempt int) time.Duration {
	return base << uint(attempt)
}

// Retry runs fn up to maxRetries+1 times with exponential backoff, stopping
// early when ctx is done.
func Retry(ctx context.Context, log logger.Logger, name string, maxRetries int, baseWait time.Duration, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}
		wait := Backoff(baseWait, attempt)
		log.Warn(ctx, "Transient failure, retrying",
			logger.String("operation", name),
			logger.Int("attempt", attempt+1),
			logger.Duration("wait", wait),
			logger.WithError(err),
		)

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return err
}

func WrapExponentialBackoff(
	log logger.Logger,
	m metrics.Metrics,
	handlerName string,
	maxRetries int,
	baseWait time.Duration,
	next MessageHandler,
) MessageHandler {
	return func(ctx context.Context, msg []byte, headers map[string]interface{}) error {
		err := Retry(ctx, log, handlerName, maxRetries, baseWait, func(ctx context.Context) error {
			return next(ctx, msg, headers)
		})
		if err != nil {
			log.Error(ctx, "Max retries reached, giving up",
				logger.String("handler", handlerName),
				logger.WithError(err),
			)
			m.RecordUseCaseExecution(handlerName+"_final_failure", false, 0)
		}
		return err
	}
}
