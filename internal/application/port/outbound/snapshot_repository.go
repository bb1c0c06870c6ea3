package outbound

import (
	"context"

	"github.com/DioGolang/fleettrack/internal/domain/entity"
)

type SnapshotRepository interface {
	Save(ctx context.Context, states []entity.DriverState) error
	Load(ctx context.Context) ([]entity.DriverState, error)
}

type TransitionRepository interface {
	Save(ctx context.Context, t entity.RegionTransition) error
	ListByDriver(ctx context.Context, driverID string, limit int) ([]entity.RegionTransition, error)
}
