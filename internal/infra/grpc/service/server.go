package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/DioGolang/fleettrack/internal/infra/grpc/pb"
	"github.com/DioGolang/fleettrack/pkg/metrics"
)

// NewServer builds a gRPC server with tracing, latency metrics and the
// standard health service already registered.
func NewServer(svc pb.TrackingServiceServer, m metrics.Metrics) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(MetricsUnaryInterceptor(m)),
	)
	pb.RegisterTrackingServiceServer(srv, svc)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(pb.TrackingService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv, hs
}

func MetricsUnaryInterceptor(m metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		svc, method := splitMethod(info.FullMethod)
		m.ObserveGRPCRequestDuration(svc, method, status.Code(err).String(), time.Since(start).Seconds())
		return resp, err
	}
}

func splitMethod(full string) (string, string) {
	full = strings.TrimPrefix(full, "/")
	if i := strings.LastIndex(full, "/"); i >= 0 {
		return full[:i], full[i+1:]
	}
	return "unknown", full
}
