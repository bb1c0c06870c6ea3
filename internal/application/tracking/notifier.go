package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/DioGolang/fleettrack/internal/domain/entity"
	"github.com/DioGolang/fleettrack/pkg/logger"
	"github.com/DioGolang/fleettrack/pkg/metrics"
)

// TransitionHandler receives every region transition. It runs on the
// goroutine that recorded the location, so it must return promptly.
type TransitionHandler func(ctx context.Context, t entity.RegionTransition) error

type SubscriptionHandle struct {
	id   uint64
	name string
}

func (h SubscriptionHandle) Name() string { return h.name }

type subscriber struct {
	id      uint64
	name    string
	handler TransitionHandler
}

// Notifier fans a transition out to subscribers in subscription order.
type Notifier struct {
	mu      sync.RWMutex
	nextID  uint64
	subs    []subscriber
	log     logger.Logger
	metrics metrics.Metrics
}

func NewNotifier(log logger.Logger, m metrics.Metrics) *Notifier {
	return &Notifier{log: log, metrics: m}
}

func (n *Notifier) Subscribe(name string, h TransitionHandler) SubscriptionHandle {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	n.subs = append(n.subs, subscriber{id: n.nextID, name: name, handler: h})
	return SubscriptionHandle{id: n.nextID, name: name}
}

// Unsubscribe reports whether the handle was still registered.
func (n *Notifier) Unsubscribe(h SubscriptionHandle) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, s := range n.subs {
		if s.id == h.id {
			n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
			return true
		}
	}
	return false
}

func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

// Notify calls every subscriber even when earlier ones fail or panic. The
// returned error joins the individual failures and is informational only.
func (n *Notifier) Notify(ctx context.Context, t entity.RegionTransition) error {
	n.mu.RLock()
	subs := make([]subscriber, len(n.subs))
	copy(subs, n.subs)
	n.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := n.call(ctx, s, t); err != nil {
			n.log.Warn(ctx, "Transition subscriber failed",
				logger.String("subscriber", s.name),
				logger.String("driver_id", t.DriverID),
				logger.String("transition_id", t.ID),
				logger.WithError(err),
			)
			n.metrics.RecordCallbackFailure(s.name)
			errs = append(errs, fmt.Errorf("%w: %s: %w", entity.ErrCallbackFailure, s.name, err))
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) call(ctx context.Context, s subscriber, t entity.RegionTransition) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.handler(ctx, t)
}
