package event

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/DioGolang/fleettrack/internal/application/tracking"
	"github.com/DioGolang/fleettrack/internal/domain/entity"
	"github.com/DioGolang/fleettrack/pkg/metrics"
)

// NewCircuitBreaker trips after five consecutive failures and probes again
// after openFor.
func NewCircuitBreaker(name string, openFor time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})
}

// WrapResilientSubscriber bounds a network sink so the notifier never waits
// longer than timeout, and fails fast while the sink's breaker is open.
func WrapResilientSubscriber(
	m metrics.Metrics,
	handlerName string,
	timeout time.Duration,
	cb *gobreaker.CircuitBreaker,
	next tracking.TransitionHandler,
) tracking.TransitionHandler {
	return func(ctx context.Context, t entity.RegionTransition) error {
		start := time.Now()

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		_, err := cb.Execute(func() (interface{}, error) {
			return nil, next(ctx, t)
		})

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			m.RecordUseCaseExecution(handlerName, false, time.Since(start))
			return err
		}

		m.RecordUseCaseExecution(handlerName, err == nil, time.Since(start))
		return err
	}
}
