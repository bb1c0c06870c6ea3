package tracking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DioGolang/fleettrack/internal/application/port/outbound"
	"github.com/DioGolang/fleettrack/internal/domain/entity"
	"github.com/DioGolang/fleettrack/internal/domain/geo"
	"github.com/DioGolang/fleettrack/pkg/logger"
	"github.com/DioGolang/fleettrack/pkg/metrics"
)

var ErrInvalidQuery = errors.New("invalid query")

const DefaultStaleAfter = 30 * time.Minute

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithStaleAfter sets the staleness window; zero disables it.
func WithStaleAfter(d time.Duration) Option {
	return func(s *Service) { s.staleAfter = d }
}

func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

// Service is the tracking engine. Every state change goes through
// RecordLocation; everything else is a read.
type Service struct {
	regions    RegionCatalog
	store      outbound.DriverStateStore
	notifier   *Notifier
	log        logger.Logger
	metrics    metrics.Metrics
	tracer     trace.Tracer
	now        func() time.Time
	newID      func() string
	staleAfter time.Duration
}

func NewService(
	regions RegionCatalog,
	store outbound.DriverStateStore,
	notifier *Notifier,
	log logger.Logger,
	m metrics.Metrics,
	opts ...Option,
) *Service {
	s := &Service{
		regions:    regions,
		store:      store,
		notifier:   notifier,
		log:        log,
		metrics:    m,
		tracer:     otel.Tracer("fleettrack/tracking"),
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
		staleAfter: DefaultStaleAfter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Execute(ctx context.Context, input RecordLocationInput) (RecordLocationOutput, error) {
	return s.RecordLocation(ctx, input)
}

// RecordLocation classifies the ping, stores it and, when the driver changed
// region, notifies subscribers before returning.
func (s *Service) RecordLocation(ctx context.Context, input RecordLocationInput) (RecordLocationOutput, error) {
	ctx, span := s.tracer.Start(ctx, "RecordLocation", trace.WithAttributes(
		attribute.String("driver.id", input.DriverID),
	))
	defer span.End()

	if strings.TrimSpace(input.DriverID) == "" {
		return s.reject(span, entity.ErrDriverIDRequired)
	}
	if err := input.Coordinate.Validate(); err != nil {
		return s.reject(span, err)
	}

	observedAt := s.now().UTC()
	if input.Timestamp != nil {
		observedAt = input.Timestamp.UTC()
	}

	region, _ := s.regions.Classify(input.Coordinate)
	prev, existed := s.store.Upsert(entity.DriverState{
		DriverID:   input.DriverID,
		Coordinate: input.Coordinate,
		Region:     region,
		LastSeenAt: observedAt,
	})
	s.metrics.RecordLocationUpdate("success")
	span.SetAttributes(attribute.String("driver.region", region))

	out := RecordLocationOutput{
		DriverID:   input.DriverID,
		Region:     region,
		Timestamp:  observedAt,
		Coordinate: input.Coordinate,
	}

	if !existed {
		s.metrics.SetTrackedDrivers(s.store.Count())
		s.log.Debug(ctx, "First location for driver",
			logger.String("driver_id", input.DriverID),
			logger.String("region", region),
		)
		return out, nil
	}

	t := entity.NewRegionTransition(s.newID(), input.DriverID, prev.Region, region, observedAt, input.Coordinate)
	if t == nil {
		return out, nil
	}
	out.TransitionID = t.ID
	s.metrics.RecordRegionTransition(t.From, t.To)
	span.AddEvent("region.transition", trace.WithAttributes(
		attribute.String("transition.id", t.ID),
		attribute.String("transition.from", t.From),
		attribute.String("transition.to", t.To),
	))
	// Subscriber failures are already logged and counted by the notifier.
	_ = s.notifier.Notify(ctx, *t)
	return out, nil
}

func (s *Service) reject(span trace.Span, err error) (RecordLocationOutput, error) {
	s.metrics.RecordLocationUpdate("invalid")
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return RecordLocationOutput{}, err
}

func (s *Service) CurrentRegion(driverID string) (DriverView, error) {
	st, ok := s.store.Get(driverID)
	if !ok {
		return DriverView{}, fmt.Errorf("%w: %s", entity.ErrDriverNotFound, driverID)
	}
	return s.view(st, s.now()), nil
}

// Drivers returns every known driver sorted by id.
func (s *Service) Drivers() []DriverView {
	return s.views(s.store.ListAll())
}

func (s *Service) DriversInRegion(region string) ([]DriverView, error) {
	if !s.regions.Exists(region) {
		return nil, fmt.Errorf("%w: %s", entity.ErrRegionNotFound, region)
	}
	return s.views(s.store.ListByRegion(region)), nil
}

// Nearby lists drivers within radiusMeters of center, closest first. A
// non-positive limit returns every match.
func (s *Service) Nearby(center geo.Coordinate, radiusMeters float64, limit int) ([]NearbyDriver, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if !(radiusMeters > 0) {
		return nil, fmt.Errorf("%w: radius must be positive", ErrInvalidQuery)
	}

	now := s.now()
	var out []NearbyDriver
	for _, st := range s.store.ListAll() {
		d, err := geo.HaversineDistanceMeters(center, st.Coordinate)
		if err != nil || d > radiusMeters {
			continue
		}
		out = append(out, NearbyDriver{DriverView: s.view(st, now), DistanceMeters: d})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeliveryEstimate sizes the delivery window from the destination's region
// family, falling back to the driver's region, and adds time for distance.
func (s *Service) DeliveryEstimate(driverID string, destination geo.Coordinate) (Estimate, error) {
	if err := destination.Validate(); err != nil {
		return Estimate{}, err
	}
	st, ok := s.store.Get(driverID)
	if !ok {
		return Estimate{}, fmt.Errorf("%w: %s", entity.ErrDriverNotFound, driverID)
	}

	destRegion, _ := s.regions.Classify(destination)
	family := destRegion
	if family == "" {
		family = st.Region
	}
	w := windowFor(family)
	dist, err := geo.HaversineDistanceMeters(st.Coordinate, destination)
	if err != nil {
		return Estimate{}, err
	}

	return Estimate{
		DriverID:          driverID,
		DriverRegion:      st.Region,
		DestinationRegion: destRegion,
		DistanceMeters:    dist,
		MinMinutes:        w.min,
		MaxMinutes:        w.max,
		ExtraMinutes:      extraMinutes(dist),
	}, nil
}

func (s *Service) Stats() Stats {
	now := s.now()
	all := s.store.ListAll()
	st := Stats{
		TrackedDrivers: len(all),
		ActiveRegions:  s.regions.ActiveCount(),
		DriversPerZone: make(map[string]int),
	}
	for _, d := range all {
		if d.IsStale(now, s.staleAfter) {
			st.StaleDrivers++
		}
		if d.HasRegion() {
			st.DriversPerZone[d.Region]++
		}
	}
	return st
}

// Snapshot returns the full driver table for persistence.
func (s *Service) Snapshot() []entity.DriverState {
	return s.store.ListAll()
}

// Restore loads persisted states without overwriting fresher live ones. Each
// state is classified against the current catalog, since the regions may have
// changed since the snapshot was taken.
func (s *Service) Restore(ctx context.Context, states []entity.DriverState) int {
	classified := make([]entity.DriverState, len(states))
	for i, st := range states {
		st.Region, _ = s.regions.Classify(st.Coordinate)
		classified[i] = st
	}
	n := s.store.Restore(classified)
	s.metrics.SetTrackedDrivers(s.store.Count())
	s.log.Info(ctx, "Driver states restored",
		logger.Int("loaded", len(states)),
		logger.Int("applied", n),
	)
	return n
}

func (s *Service) views(states []entity.DriverState) []DriverView {
	now := s.now()
	out := make([]DriverView, 0, len(states))
	for _, st := range states {
		out = append(out, s.view(st, now))
	}
	return out
}

func (s *Service) view(st entity.DriverState, now time.Time) DriverView {
	return DriverView{
		DriverID:   st.DriverID,
		Region:     st.Region,
		Timestamp:  st.LastSeenAt,
		Coordinate: st.Coordinate,
		Stale:      st.IsStale(now, s.staleAfter),
	}
}
