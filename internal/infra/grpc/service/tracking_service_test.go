package service

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/DioGolang/fleettrack/internal/application/region"
	"github.com/DioGolang/fleettrack/internal/application/tracking"
	"github.com/DioGolang/fleettrack/internal/domain/geo"
	"github.com/DioGolang/fleettrack/internal/infra/grpc/pb"
	"github.com/DioGolang/fleettrack/internal/infra/storage"
	"github.com/DioGolang/fleettrack/pkg/logger"
	"github.com/DioGolang/fleettrack/pkg/metrics"
)

func startServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	reg, err := region.NewRegistry([]region.Definition{{
		Name: "north",
		Boundary: []geo.Coordinate{
			{Latitude: 39.98, Longitude: -75.20},
			{Latitude: 39.98, Longitude: -75.12},
			{Latitude: 40.02, Longitude: -75.12},
			{Latitude: 40.02, Longitude: -75.20},
		},
		Active: true,
	}})
	require.NoError(t, err)

	m := metrics.NewPrometheusMetrics(prometheus.NewRegistry(), "test")
	svc := tracking.NewService(reg, storage.NewShardedStore(4), tracking.NewNotifier(logger.NewNop(), m), logger.NewNop(), m)
	srv, _ := NewServer(NewTrackingService(svc, svc, logger.NewNop()), m)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func mustStruct(t *testing.T, m map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestTrackingService_RecordAndQuery(t *testing.T) {
	client := pb.NewTrackingServiceClient(startServer(t))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := client.RecordLocation(ctx, mustStruct(t, map[string]interface{}{
		"driver_id": "d1",
		"latitude":  39.99,
		"longitude": -75.15,
		"timestamp": "2024-03-01T12:00:00Z",
	}))
	require.NoError(t, err)
	assert.Equal(t, "north", out.AsMap()["region"])
	assert.Equal(t, "2024-03-01T12:00:00Z", out.AsMap()["timestamp"])

	cur, err := client.CurrentRegion(ctx, mustStruct(t, map[string]interface{}{"driver_id": "d1"}))
	require.NoError(t, err)
	assert.Equal(t, "north", cur.AsMap()["region"])

	in, err := client.DriversInRegion(ctx, mustStruct(t, map[string]interface{}{"region": "north"}))
	require.NoError(t, err)
	assert.Equal(t, float64(1), in.AsMap()["count"])
}

func TestTrackingService_ErrorCodes(t *testing.T) {
	client := pb.NewTrackingServiceClient(startServer(t))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tests := []struct {
		name string
		call func() error
		code codes.Code
	}{
		{"Missing latitude", func() error {
			_, err := client.RecordLocation(ctx, mustStruct(t, map[string]interface{}{"driver_id": "d1", "longitude": 1.0}))
			return err
		}, codes.InvalidArgument},
		{"Latitude as string", func() error {
			_, err := client.RecordLocation(ctx, mustStruct(t, map[string]interface{}{"driver_id": "d1", "latitude": "x", "longitude": 1.0}))
			return err
		}, codes.InvalidArgument},
		{"Out of range", func() error {
			_, err := client.RecordLocation(ctx, mustStruct(t, map[string]interface{}{"driver_id": "d1", "latitude": 200.0, "longitude": 1.0}))
			return err
		}, codes.InvalidArgument},
		{"Unknown driver", func() error {
			_, err := client.CurrentRegion(ctx, mustStruct(t, map[string]interface{}{"driver_id": "d2"}))
			return err
		}, codes.NotFound},
		{"Unknown region", func() error {
			_, err := client.DriversInRegion(ctx, mustStruct(t, map[string]interface{}{"region": "atlantis"}))
			return err
		}, codes.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()

			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestServer_HealthService(t *testing.T) {
	conn := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: "fleettrack.v1.TrackingService"})

	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestSplitMethod(t *testing.T) {
	svc, method := splitMethod("/fleettrack.v1.TrackingService/RecordLocation")
	assert.Equal(t, "fleettrack.v1.TrackingService", svc)
	assert.Equal(t, "RecordLocation", method)

	svc, method = splitMethod("odd")
	assert.Equal(t, "unknown", svc)
	assert.Equal(t, "odd", method)
}
