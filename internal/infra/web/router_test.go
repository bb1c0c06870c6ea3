package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DioGolang/fleettrack/internal/application/region"
	"github.com/DioGolang/fleettrack/internal/application/tracking"
	"github.com/DioGolang/fleettrack/internal/domain/entity"
	"github.com/DioGolang/fleettrack/internal/domain/geo"
	"github.com/DioGolang/fleettrack/internal/infra/storage"
	"github.com/DioGolang/fleettrack/internal/infra/web/handler"
	"github.com/DioGolang/fleettrack/internal/infra/web/middleware"
	"github.com/DioGolang/fleettrack/pkg/logger"
	"github.com/DioGolang/fleettrack/pkg/metrics"
)

const operatorSecret = "test-secret"

type transitionLog struct {
	mu    sync.Mutex
	items []entity.RegionTransition
}

func (l *transitionLog) handle(_ context.Context, t entity.RegionTransition) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, t)
	return nil
}

func (l *transitionLog) all() []entity.RegionTransition {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]entity.RegionTransition(nil), l.items...)
}

type app struct {
	router      http.Handler
	transitions *transitionLog
	store       *storage.ShardedStore
}

func square(minLat, minLng, maxLat, maxLng float64) []geo.Coordinate {
	return []geo.Coordinate{
		{Latitude: minLat, Longitude: minLng},
		{Latitude: minLat, Longitude: maxLng},
		{Latitude: maxLat, Longitude: maxLng},
		{Latitude: maxLat, Longitude: minLng},
	}
}

func newApp(t *testing.T, limiter *middleware.IPDispatcher) *app {
	t.Helper()
	reg, err := region.NewRegistry([]region.Definition{
		{Name: "north", Boundary: square(39.98, -75.20, 40.02, -75.12), Active: true},
		{Name: "south", Boundary: square(39.92, -75.22, 39.97, -75.14), Active: true},
	})
	require.NoError(t, err)

	promReg := prometheus.NewRegistry()
	m := metrics.NewPrometheusMetrics(promReg, "test")
	log := logger.NewNop()
	store := storage.NewShardedStore(4)
	notifier := tracking.NewNotifier(log, m)
	transitions := &transitionLog{}
	notifier.Subscribe("test", transitions.handle)
	svc := tracking.NewService(reg, store, notifier, log, m)

	router := NewRouter(RouterDeps{
		ServiceName:    "fleettrack-test",
		Logger:         log,
		Metrics:        m,
		Tracking:       handler.NewTrackingHandler(svc, svc, log),
		Regions:        handler.NewRegionHandler(reg, log),
		Status:         handler.NewStatusHandler("fleettrack-test", svc),
		Limiter:        limiter,
		Gatherer:       promReg,
		OperatorSecret: operatorSecret,
	})
	return &app{router: router, transitions: transitions, store: store}
}

func (a *app) do(t *testing.T, method, target, body string, header ...string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func TestRouter_EnterThenLeaveRegion(t *testing.T) {
	a := newApp(t, nil)

	code, body := a.do(t, http.MethodPost, "/location-update", `{"driver_id":"d1","latitude":39.99,"longitude":-75.15}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "north", body["region"])

	code, body = a.do(t, http.MethodPost, "/location-update", `{"driver_id":"d1","latitude":39.50,"longitude":-74.50}`)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "region")
	assert.Nil(t, body["region"])

	events := a.transitions.all()
	require.Len(t, events, 1)
	assert.Equal(t, "north", events[0].From)
	assert.Equal(t, "", events[0].To)
	assert.Equal(t, "d1", events[0].DriverID)
}

func TestRouter_UnknownDriverIsNotFound(t *testing.T) {
	a := newApp(t, nil)

	code, body := a.do(t, http.MethodGet, "/current-region/d2", "")

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", body["status"])
}

func TestRouter_InvalidLatitudeDoesNotMutate(t *testing.T) {
	a := newApp(t, nil)
	code, _ := a.do(t, http.MethodPost, "/location-update", `{"driver_id":"d1","latitude":39.99,"longitude":-75.15}`)
	require.Equal(t, http.StatusOK, code)

	code, body := a.do(t, http.MethodPost, "/location-update", `{"driver_id":"d1","latitude":200,"longitude":-75.15}`)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", body["status"])
	st, ok := a.store.Get("d1")
	require.True(t, ok)
	assert.Equal(t, "north", st.Region)
	assert.InDelta(t, 39.99, st.Coordinate.Latitude, 1e-12)
	assert.Empty(t, a.transitions.all())
}

func TestRouter_DisjointRegionsDoNotShareDrivers(t *testing.T) {
	a := newApp(t, nil)
	code, _ := a.do(t, http.MethodPost, "/location-update", `{"driver_id":"d1","latitude":39.99,"longitude":-75.15}`)
	require.Equal(t, http.StatusOK, code)

	code, north := a.do(t, http.MethodGet, "/region/north/drivers", "")
	require.Equal(t, http.StatusOK, code)
	code, south := a.do(t, http.MethodGet, "/region/south/drivers", "")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, float64(1), north["count"])
	assert.Equal(t, float64(0), south["count"])
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	a := newApp(t, nil)
	a.do(t, http.MethodPost, "/location-update", `{"driver_id":"d1","latitude":39.99,"longitude":-75.15}`)

	code, body := a.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(2), body["active_regions"])
	assert.Equal(t, float64(1), body["tracked_drivers"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fleettrack_location_updates_total")
	assert.Contains(t, rec.Body.String(), `path="/location-update"`)
}

func operatorToken(t *testing.T, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "ops",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(operatorSecret))
	require.NoError(t, err)
	return signed
}

func TestRouter_RegionToggleRequiresOperator(t *testing.T) {
	a := newApp(t, nil)

	code, _ := a.do(t, http.MethodPut, "/regions/north/active", `{"active":false}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(t, http.MethodPut, "/regions/north/active", `{"active":false}`,
		"Authorization", "Bearer "+operatorToken(t, "viewer"))
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := a.do(t, http.MethodPut, "/regions/north/active", `{"active":false}`,
		"Authorization", "Bearer "+operatorToken(t, middleware.OperatorRole))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["region"].(map[string]any)["is_active"])

	code, body = a.do(t, http.MethodPost, "/location-update", `{"driver_id":"d9","latitude":39.99,"longitude":-75.15}`)
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, body["region"])
}

func TestRouter_RateLimitsLocationUpdates(t *testing.T) {
	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{RequestsPerSecond: 0.001, Burst: 1})
	a := newApp(t, limiter)

	code, _ := a.do(t, http.MethodPost, "/location-update", `{"driver_id":"d1","latitude":39.99,"longitude":-75.15}`)
	require.Equal(t, http.StatusOK, code)

	code, body := a.do(t, http.MethodPost, "/location-update", `{"driver_id":"d1","latitude":39.99,"longitude":-75.15}`)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "error", body["status"])

	code, _ = a.do(t, http.MethodGet, "/drivers", "")
	assert.Equal(t, http.StatusOK, code)
}
