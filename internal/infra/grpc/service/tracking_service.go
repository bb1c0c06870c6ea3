package service

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/DioGolang/fleettrack/internal/application/tracking"
	"github.com/DioGolang/fleettrack/internal/domain/entity"
	"github.com/DioGolang/fleettrack/internal/domain/geo"
	"github.com/DioGolang/fleettrack/internal/infra/grpc/pb"
	"github.com/DioGolang/fleettrack/pkg/logger"
)

type TrackingQueries interface {
	CurrentRegion(driverID string) (tracking.DriverView, error)
	DriversInRegion(region string) ([]tracking.DriverView, error)
}

// TrackingService mirrors the HTTP tracking routes over gRPC.
type TrackingService struct {
	recorder tracking.RecordLocationUseCase
	queries  TrackingQueries
	logger   logger.Logger
}

var _ pb.TrackingServiceServer = (*TrackingService)(nil)

func NewTrackingService(rec tracking.RecordLocationUseCase, q TrackingQueries, log logger.Logger) *TrackingService {
	return &TrackingService{recorder: rec, queries: q, logger: log}
}

func (s *TrackingService) RecordLocation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	driverID := fields["driver_id"].GetStringValue()
	lat, err := numberField(fields, "latitude")
	if err != nil {
		return nil, err
	}
	lng, err := numberField(fields, "longitude")
	if err != nil {
		return nil, err
	}

	input := tracking.RecordLocationInput{
		DriverID:   driverID,
		Coordinate: geo.Coordinate{Latitude: lat, Longitude: lng},
	}
	if raw := fields["timestamp"].GetStringValue(); raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid timestamp: %v", err)
		}
		input.Timestamp = &ts
	}

	out, err := s.recorder.Execute(ctx, input)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"driver_id":     out.DriverID,
		"region":        nullable(out.Region),
		"timestamp":     out.Timestamp.Format(time.RFC3339Nano),
		"latitude":      out.Coordinate.Latitude,
		"longitude":     out.Coordinate.Longitude,
		"transition_id": nullable(out.TransitionID),
	})
}

func (s *TrackingService) CurrentRegion(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	view, err := s.queries.CurrentRegion(req.GetFields()["driver_id"].GetStringValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return structpb.NewStruct(driverMap(view))
}

func (s *TrackingService) DriversInRegion(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	region := req.GetFields()["region"].GetStringValue()
	views, err := s.queries.DriversInRegion(region)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	drivers := make([]interface{}, 0, len(views))
	for _, v := range views {
		drivers = append(drivers, driverMap(v))
	}
	return structpb.NewStruct(map[string]interface{}{
		"region":  region,
		"drivers": drivers,
		"count":   len(views),
	})
}

func (s *TrackingService) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, entity.ErrDriverIDRequired), errors.Is(err, geo.ErrInvalidCoordinate):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, entity.ErrDriverNotFound), errors.Is(err, entity.ErrRegionNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		s.logger.Error(ctx, "gRPC request failed", logger.WithError(err))
		return status.Error(codes.Internal, "internal server error")
	}
}

func numberField(fields map[string]*structpb.Value, name string) (float64, error) {
	v, ok := fields[name]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "missing required field: %s", name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
	}
	return n.NumberValue, nil
}

func driverMap(v tracking.DriverView) map[string]interface{} {
	return map[string]interface{}{
		"driver_id": v.DriverID,
		"region":    nullable(v.Region),
		"timestamp": v.Timestamp.Format(time.RFC3339Nano),
		"latitude":  v.Coordinate.Latitude,
		"longitude": v.Coordinate.Longitude,
		"stale":     v.Stale,
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
