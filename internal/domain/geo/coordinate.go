// Package geo holds the spatial primitives used for region classification:
// validated WGS84 coordinates, simple polygons and great-circle distance.
//
// Polygons are planar in (longitude, latitude) space. That is accurate
// enough for city-scale delivery regions and matches how GIS tools treat
// small EPSG:4326 polygons.
package geo

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is an immutable WGS84 position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinate validates lat/lng and returns the coordinate.
func NewCoordinate(latitude, longitude float64) (Coordinate, error) {
	c := Coordinate{Latitude: latitude, Longitude: longitude}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Validate rejects NaN, infinities and values outside [-90,90] x [-180,180].
func (c Coordinate) Validate() error {
	if !isFinite(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v must be between -90 and 90", ErrInvalidCoordinate, c.Latitude)
	}
	if !isFinite(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v must be between -180 and 180", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Latitude, c.Longitude)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
