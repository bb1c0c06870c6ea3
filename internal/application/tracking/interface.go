package tracking

import (
	"context"

	"github.com/DioGolang/fleettrack/internal/domain/geo"
)

type RecordLocationUseCase interface {
	Execute(ctx context.Context, input RecordLocationInput) (RecordLocationOutput, error)
}

// RegionCatalog is the read side of the region registry used by the engine.
type RegionCatalog interface {
	Classify(c geo.Coordinate) (string, bool)
	Exists(name string) bool
	ActiveCount() int
}
