package event

import (
	"context"
	"fmt"
	"time"

	"github.com/DioGolang/fleettrack/pkg/logger"
	"github.com/DioGolang/fleettrack/pkg/metrics"
)

type IdempotencyStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, key string) error
}

// WrapIdempotency drops redeliveries of a message already handled within ttl.
// Messages are identified by the x-event-id header; messages without one are
// passed through unguarded. When the transport reuses ids it also sets
// x-redelivered, and only messages flagged true are checked against the
// store. A failed handler releases its key so the redelivery is processed.
func WrapIdempotency(
	log logger.Logger,
	m metrics.Metrics,
	store IdempotencyStore,
	handlerName string,
	ttl time.Duration,
	next MessageHandler,
) MessageHandler {
	return func(ctx context.Context, msg []byte, headers map[string]interface{}) error {
		var eventID string
		if v, ok := headers[HeaderEventID]; ok && v != nil {
			eventID = fmt.Sprintf("%v", v)
		}
		if eventID == "" {
			return next(ctx, msg, headers)
		}

		key := fmt.Sprintf("dedup:%s:%s", handlerName, eventID)

		saved, err := claim(ctx, store, key, ttl, headers)
		if err != nil {
			// Fail closed: without the guard a replay could emit a second transition.
			log.Error(ctx, "Idempotency store unavailable", logger.WithError(err))
			return fmt.Errorf("idempotency store unavailable: %w", err)
		}

		if !saved {
			m.IncDuplicateMessage(handlerName)
			log.Info(ctx, "Duplicate message dropped",
				logger.String("handler", handlerName),
				logger.String("event_id", eventID),
			)
			return nil
		}

		if err := next(ctx, msg, headers); err != nil {
			log.Warn(ctx, "Handler failed, releasing idempotency key",
				logger.String("key", key),
				logger.WithError(err),
			)
			if delErr := store.Del(ctx, key); delErr != nil {
				log.Error(ctx, "Failed to release idempotency key",
					logger.String("key", key),
					logger.WithError(delErr),
				)
			}
			return err
		}
		return nil
	}
}

// claim reserves key for this message. A message the transport marks as a
// first delivery always wins the key, since its id may be a recycled one.
func claim(ctx context.Context, store IdempotencyStore, key string, ttl time.Duration, headers map[string]interface{}) (bool, error) {
	if redelivered, ok := headers[HeaderRedelivered].(bool); ok && !redelivered {
		if err := store.Set(ctx, key, "processing", ttl); err != nil {
			return false, err
		}
		return true, nil
	}
	return store.SetNX(ctx, key, "processing", ttl)
}
