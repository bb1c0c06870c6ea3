package outbound

import "github.com/DioGolang/fleettrack/internal/domain/entity"

// DriverStateStore is the in-process table of last known driver positions.
// Implementations must be safe for concurrent use and must never perform I/O
// while holding their locks.
type DriverStateStore interface {
	Get(driverID string) (entity.DriverState, bool)
	// Upsert replaces the driver's state and returns what it replaced, as a
	// single atomic step per driver.
	Upsert(state entity.DriverState) (previous entity.DriverState, existed bool)
	ListAll() []entity.DriverState
	ListByRegion(region string) []entity.DriverState
	Count() int
	// Restore loads states that are newer than what the store holds and
	// returns how many were applied.
	Restore(states []entity.DriverState) int
}
