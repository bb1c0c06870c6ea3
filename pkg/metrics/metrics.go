package metrics

import "time"

type Metrics interface {
	// Business
	RecordLocationUpdate(status string)
	RecordRegionTransition(from, to string)
	RecordCallbackFailure(subscriber string)
	RecordUseCaseExecution(useCaseName string, success bool, duration time.Duration)
	SetTrackedDrivers(count int)

	// Infrastructure (HTTP & gRPC)
	ObserveHTTPRequestDuration(method, path, statusCode string, duration float64)
	ObserveGRPCRequestDuration(service, method, code string, duration float64)

	// Performance and Resilience
	IncSnapshot(status string)
	IncDuplicateMessage(source string)
}
