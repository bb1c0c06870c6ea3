package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// noRegion labels transitions to or from "outside every region".
const noRegion = "none"

type Prometheus struct {
	locationUpdates   *prometheus.CounterVec
	regionTransitions *prometheus.CounterVec
	callbackFailures  *prometheus.CounterVec
	useCaseTotal      *prometheus.CounterVec
	useCaseDuration   *prometheus.HistogramVec
	trackedDrivers    prometheus.Gauge
	httpDuration      *prometheus.HistogramVec
	grpcDuration      *prometheus.HistogramVec
	snapshots         *prometheus.CounterVec
	duplicates        *prometheus.CounterVec
}

func NewPrometheusMetrics(reg prometheus.Registerer, serviceName string) *Prometheus {
	m := &Prometheus{
		locationUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "fleettrack_location_updates_total",
			Help:        "Total location updates received.",
			ConstLabels: prometheus.Labels{"service": serviceName},
		}, []string{"status"}),
		regionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "fleettrack_region_transitions_total",
			Help:        "Total driver region transitions detected.",
			ConstLabels: prometheus.Labels{"service": serviceName},
		}, []string{"from", "to"}),
		callbackFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "fleettrack_transition_callback_failures_total",
			Help:        "Transition subscribers that returned an error or panicked.",
			ConstLabels: prometheus.Labels{"service": serviceName},
		}, []string{"subscriber"}),
		useCaseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "app_usecase_total",
			Help:        "Total number of Use Case executions.",
			ConstLabels: prometheus.Labels{"service": serviceName},
		}, []string{"use_case", "status"}),
		useCaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "app_usecase_duration_seconds",
			Help:        "Use Case execution latency.",
			Buckets:     []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			ConstLabels: prometheus.Labels{"service": serviceName},
		}, []string{"use_case", "status"}),
		trackedDrivers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "fleettrack_tracked_drivers",
			Help:        "Drivers with a recorded state.",
			ConstLabels: prometheus.Labels{"service": serviceName},
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "app_http_duration_seconds",
			Help:        "Duration of HTTP requests.",
			Buckets:     []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			ConstLabels: prometheus.Labels{"service": serviceName},
		}, []string{"method", "path", "status_code"}),
		grpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "grpc_duration_seconds",
			Help:        "Duration of gRPC requests.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{"service": serviceName},
		}, []string{"grpc_service", "grpc_method", "status_code"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "fleettrack_snapshots_total",
			Help:        "Driver state snapshot attempts.",
			ConstLabels: prometheus.Labels{"service": serviceName},
		}, []string{"status"}),
		duplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "fleettrack_duplicate_messages_total",
			Help:        "Inbound messages dropped by the idempotency guard.",
			ConstLabels: prometheus.Labels{"service": serviceName},
		}, []string{"source"}),
	}

	reg.MustRegister(
		m.locationUpdates,
		m.regionTransitions,
		m.callbackFailures,
		m.useCaseTotal,
		m.useCaseDuration,
		m.trackedDrivers,
		m.httpDuration,
		m.grpcDuration,
		m.snapshots,
		m.duplicates,
	)
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

func (p *Prometheus) RecordLocationUpdate(status string) {
	p.locationUpdates.WithLabelValues(status).Inc()
}

func (p *Prometheus) RecordRegionTransition(from, to string) {
	if from == "" {
		from = noRegion
	}
	if to == "" {
		to = noRegion
	}
	p.regionTransitions.WithLabelValues(from, to).Inc()
}

func (p *Prometheus) RecordCallbackFailure(subscriber string) {
	p.callbackFailures.WithLabelValues(subscriber).Inc()
}

func (p *Prometheus) RecordUseCaseExecution(useCase string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	p.useCaseTotal.WithLabelValues(useCase, status).Inc()
	p.useCaseDuration.WithLabelValues(useCase, status).Observe(duration.Seconds())
}

func (p *Prometheus) SetTrackedDrivers(count int) {
	p.trackedDrivers.Set(float64(count))
}

func (p *Prometheus) ObserveHTTPRequestDuration(method, path, code string, duration float64) {
	p.httpDuration.WithLabelValues(method, path, code).Observe(duration)
}

func (p *Prometheus) ObserveGRPCRequestDuration(service, method, code string, duration float64) {
	p.grpcDuration.WithLabelValues(service, method, code).Observe(duration)
}

func (p *Prometheus) IncSnapshot(status string) {
	p.snapshots.WithLabelValues(status).Inc()
}

func (p *Prometheus) IncDuplicateMessage(source string) {
	p.duplicates.WithLabelValues(source).Inc()
}
