package entity

import (
	"time"

	"github.com/DioGolang/fleettrack/internal/domain/geo"
)

// DriverState is the last known position of a driver. Region is empty when
// the driver was outside every active region at LastSeenAt.
type DriverState struct {
	DriverID   string         `json:"driver_id"`
	Coordinate geo.Coordinate `json:"coordinate"`
	Region     string         `json:"region,omitempty"`
	LastSeenAt time.Time      `json:"last_seen_at"`
}

func (s DriverState) HasRegion() bool {
	return s.Region != ""
}

// IsStale reports whether the driver has not been seen for longer than
// staleAfter. A non-positive window disables staleness.
func (s DriverState) IsStale(now time.Time, staleAfter time.Duration) bool {
	if staleAfter <= 0 {
		return false
	}
	return now.Sub(s.LastSeenAt) > staleAfter
}
