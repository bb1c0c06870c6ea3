package entity

import (
	"time"

	"github.com/DioGolang/fleettrack/internal/domain/geo"
)

type TransitionKind string

const (
	TransitionEnter TransitionKind = "enter"
	TransitionExit  TransitionKind = "exit"
	TransitionMove  TransitionKind = "move"
)

// RegionTransition records a driver crossing between two distinct region
// states. From or To is empty when the driver was or became regionless.
type RegionTransition struct {
	ID         string
	DriverID   string
	From       string
	To         string
	At         time.Time
	Coordinate geo.Coordinate
}

// NewRegionTransition returns nil when from and to are the same state.
func NewRegionTransition(id, driverID, from, to string, at time.Time, c geo.Coordinate) *RegionTransition {
	if from == to {
		return nil
	}
	return &RegionTransition{ID: id, DriverID: driverID, From: from, To: to, At: at, Coordinate: c}
}

func (t RegionTransition) Kind() TransitionKind {
	switch {
	case t.From == "":
		return TransitionEnter
	case t.To == "":
		return TransitionExit
	default:
		return TransitionMove
	}
}
