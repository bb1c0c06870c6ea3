package tracking

import (
	"context"

	"github.com/DioGolang/fleettrack/internal/domain/entity"
	"github.com/DioGolang/fleettrack/pkg/logger"
)

// LogTransitions is the default subscriber; it never fails.
func LogTransitions(log logger.Logger) TransitionHandler {
	return func(ctx context.Context, t entity.RegionTransition) error {
		log.Info(ctx, "Driver changed region",
			logger.String("transition_id", t.ID),
			logger.String("driver_id", t.DriverID),
			logger.String("from", t.From),
			logger.String("to", t.To),
			logger.String("kind", string(t.Kind())),
			logger.Float64("latitude", t.Coordinate.Latitude),
			logger.Float64("longitude", t.Coordinate.Longitude),
		)
		return nil
	}
}
