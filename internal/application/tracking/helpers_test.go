package tracking

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DioGolang/fleettrack/internal/application/region"
	"github.com/DioGolang/fleettrack/internal/domain/geo"
	"github.com/DioGolang/fleettrack/internal/infra/storage"
	"github.com/DioGolang/fleettrack/pkg/logger"
)

type spyMetrics struct {
	mu               sync.Mutex
	updates          map[string]int
	transitions      int
	callbackFailures map[string]int
	tracked          int
	useCases         map[string]int
}

func newSpyMetrics() *spyMetrics {
	return &spyMetrics{
		updates:          map[string]int{},
		callbackFailures: map[string]int{},
		useCases:         map[string]int{},
	}
}

func (s *spyMetrics) RecordLocationUpdate(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates[status]++
}

func (s *spyMetrics) RecordRegionTransition(from, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions++
}

func (s *spyMetrics) RecordCallbackFailure(subscriber string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbackFailures[subscriber]++
}

func (s *spyMetrics) RecordUseCaseExecution(name string, success bool, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if success {
		s.useCases[name+":success"]++
		return
	}
	s.useCases[name+":failure"]++
}

func (s *spyMetrics) SetTrackedDrivers(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracked = count
}

func (s *spyMetrics) ObserveHTTPRequestDuration(string, string, string, float64) {}
func (s *spyMetrics) ObserveGRPCRequestDuration(string, string, string, float64) {}
func (s *spyMetrics) IncSnapshot(string)                                         {}
func (s *spyMetrics) IncDuplicateMessage(string)                                 {}

var (
	northSquare = []geo.Coordinate{
		{Latitude: 39.98, Longitude: -75.20},
		{Latitude: 39.98, Longitude: -75.12},
		{Latitude: 40.02, Longitude: -75.12},
		{Latitude: 40.02, Longitude: -75.20},
	}
	southSquare = []geo.Coordinate{
		{Latitude: 39.92, Longitude: -75.22},
		{Latitude: 39.92, Longitude: -75.14},
		{Latitude: 39.98, Longitude: -75.14},
		{Latitude: 39.98, Longitude: -75.22},
	}
	jerseySquare = []geo.Coordinate{
		{Latitude: 39.88, Longitude: -75.14},
		{Latitude: 39.88, Longitude: -75.02},
		{Latitude: 39.96, Longitude: -75.02},
		{Latitude: 39.96, Longitude: -75.14},
	}

	inNorth  = geo.Coordinate{Latitude: 39.99, Longitude: -75.15}
	inSouth  = geo.Coordinate{Latitude: 39.95, Longitude: -75.20}
	inJersey = geo.Coordinate{Latitude: 39.92, Longitude: -75.08}
	nowhere  = geo.Coordinate{Latitude: 39.50, Longitude: -74.50}
)

type fixture struct {
	svc      *Service
	regions  *region.Registry
	store    *storage.ShardedStore
	notifier *Notifier
	metrics  *spyMetrics
	clock    time.Time
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	reg, err := region.NewRegistry([]region.Definition{
		{Name: "north", Boundary: northSquare, Active: true},
		{Name: "south", Boundary: southSquare, Active: true},
		{Name: "jersey_camden", Boundary: jerseySquare, Active: true},
	})
	require.NoError(t, err)

	f := &fixture{
		regions: reg,
		store:   storage.NewShardedStore(8),
		metrics: newSpyMetrics(),
		clock:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.notifier = NewNotifier(logger.NewNop(), f.metrics)
	opts = append([]Option{WithClock(func() time.Time { return f.clock })}, opts...)
	f.svc = NewService(reg, f.store, f.notifier, logger.NewNop(), f.metrics, opts...)
	return f
}
