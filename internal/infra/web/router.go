package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riandyrn/otelchi"

	"github.com/DioGolang/fleettrack/internal/infra/web/handler"
	"github.com/DioGolang/fleettrack/internal/infra/web/middleware"
	"github.com/DioGolang/fleettrack/pkg/logger"
	"github.com/DioGolang/fleettrack/pkg/metrics"
)

// RouterDeps collects the handlers mounted by NewRouter. Optional entries
// (Transitions, Stream, Dependencies, Limiter, Gatherer) may be nil.
type RouterDeps struct {
	ServiceName    string
	Logger         logger.Logger
	Metrics        metrics.Metrics
	Tracking       *handler.Tracking
	Regions        *handler.Regions
	Status         *handler.Status
	Transitions    *handler.Transitions
	Stream         http.Handler
	Dependencies   http.Handler
	Limiter        *middleware.IPDispatcher
	Gatherer       prometheus.Gatherer
	OperatorSecret string
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(otelchi.Middleware(d.ServiceName, otelchi.WithChiRoutes(r)))
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.MetricsWrapper(d.Metrics))

	r.Method(http.MethodGet, "/health", d.Status)
	if d.Dependencies != nil {
		r.Method(http.MethodGet, "/health/dependencies", d.Dependencies)
	}
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(d.Limiter.Handler(d.Logger))
		}
		r.Post("/location-update", d.Tracking.RecordLocation)
	})

	r.Get("/current-region/{driver_id}", d.Tracking.CurrentRegion)
	r.Get("/drivers", d.Tracking.Drivers)
	r.Get("/drivers/nearby", d.Tracking.Nearby)
	r.Get("/delivery-estimate/{driver_id}", d.Tracking.DeliveryEstimate)
	r.Get("/region/{region_name}/drivers", d.Tracking.DriversInRegion)
	if d.Transitions != nil {
		r.Get("/drivers/{driver_id}/transitions", d.Transitions.List)
	}

	r.Get("/regions", d.Regions.List)
	r.With(middleware.RequireOperator(d.OperatorSecret, d.Logger)).
		Put("/regions/{region_name}/active", d.Regions.SetActive)

	if d.Stream != nil {
		r.Method(http.MethodGet, "/ws/transitions", d.Stream)
	}
	return r
}
