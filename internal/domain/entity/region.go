package entity

import (
	"fmt"

	"github.com/DioGolang/fleettrack/internal/domain/geo"
)

// DeliveryRegion is a named service area. The boundary never changes after
// construction; only the active flag is toggled, and only by the registry.
type DeliveryRegion struct {
	name     string
	boundary geo.Polygon
	active   bool
}

func NewDeliveryRegion(name string, boundary []geo.Coordinate, active bool) (*DeliveryRegion, error) {
	if name == "" {
		return nil, ErrRegionNameRequired
	}
	poly, err := geo.NewPolygon(boundary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRegionBoundary, name, err)
	}
	return &DeliveryRegion{name: name, boundary: poly, active: active}, nil
}

func (r *DeliveryRegion) Name() string {
	return r.name
}

func (r *DeliveryRegion) Boundary() geo.Polygon {
	return r.boundary
}

func (r *DeliveryRegion) IsActive() bool {
	return r.active
}

func (r *DeliveryRegion) SetActive(active bool) {
	r.active = active
}

// Contains applies the inclusive boundary policy of geo.Polygon.
func (r *DeliveryRegion) Contains(c geo.Coordinate) bool {
	return r.boundary.Contains(c)
}

// Overlaps reports whether the interiors of both regions share area.
func (r *DeliveryRegion) Overlaps(other *DeliveryRegion) bool {
	return r.boundary.InteriorsOverlap(other.boundary)
}
