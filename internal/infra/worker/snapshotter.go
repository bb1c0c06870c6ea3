package worker

import (
	"context"
	"time"

	"github.com/DioGolang/fleettrack/internal/application/port/outbound"
	"github.com/DioGolang/fleettrack/internal/domain/entity"
	"github.com/DioGolang/fleettrack/internal/infra/event"
	"github.com/DioGolang/fleettrack/pkg/logger"
	"github.com/DioGolang/fleettrack/pkg/metrics"
)

// StateSource is the tracking service's persistence surface.
type StateSource interface {
	Snapshot() []entity.DriverState
	Restore(ctx context.Context, states []entity.DriverState) int
}

// Snapshotter periodically copies the driver table to a SnapshotRepository.
// Snapshots are best effort: a failed save is retried with backoff and then
// skipped until the next tick.
type Snapshotter struct {
	source     StateSource
	repo       outbound.SnapshotRepository
	logger     logger.Logger
	metrics    metrics.Metrics
	interval   time.Duration
	maxRetries int
	baseWait   time.Duration
	timeout    time.Duration
}

func NewSnapshotter(src StateSource, repo outbound.SnapshotRepository, log logger.Logger, m metrics.Metrics, interval time.Duration) *Snapshotter {
	return &Snapshotter{
		source:     src,
		repo:       repo,
		logger:     log,
		metrics:    m,
		interval:   interval,
		maxRetries: 3,
		baseWait:   500 * time.Millisecond,
		timeout:    10 * time.Second,
	}
}

// LoadInto restores the last snapshot into the source.
func (s *Snapshotter) LoadInto(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	states, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	s.source.Restore(ctx, states)
	return nil
}

// Run saves on every tick and once more when ctx is cancelled.
func (s *Snapshotter) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final save on shutdown, detached from the cancelled context.
			s.SaveOnce(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			s.SaveOnce(ctx)
		}
	}
}

func (s *Snapshotter) SaveOnce(ctx context.Context) {
	states := s.source.Snapshot()
	err := event.Retry(ctx, s.logger, "snapshot", s.maxRetries, s.baseWait, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.repo.Save(ctx, states)
	})
	if err != nil {
		s.metrics.IncSnapshot("failure")
		s.logger.Error(ctx, "Snapshot failed", logger.WithError(err))
		return
	}
	s.metrics.IncSnapshot("success")
	s.logger.Info(ctx, "Snapshot saved", logger.Int("drivers", len(states)))
}
