package tracking

import (
	"time"

	"github.com/DioGolang/fleettrack/internal/domain/geo"
)

// Input

type RecordLocationInput struct {
	DriverID   string
	Coordinate geo.Coordinate
	// Timestamp defaults to the service clock when nil.
	Timestamp *time.Time
}

// Output

type RecordLocationOutput struct {
	DriverID   string
	Region     string
	Timestamp  time.Time
	Coordinate geo.Coordinate
	// TransitionID is set when this ping moved the driver between regions.
	TransitionID string
}

type DriverView struct {
	DriverID   string
	Region     string
	Timestamp  time.Time
	Coordinate geo.Coordinate
	Stale      bool
}

type NearbyDriver struct {
	DriverView
	DistanceMeters float64
}

type Estimate struct {
	DriverID          string
	DriverRegion      string
	DestinationRegion string
	DistanceMeters    float64
	MinMinutes        int
	MaxMinutes        int
	ExtraMinutes      int
}

type Stats struct {
	TrackedDrivers int
	StaleDrivers   int
	ActiveRegions  int
	DriversPerZone map[string]int
}
