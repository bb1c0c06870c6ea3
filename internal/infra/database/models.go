package database

import (
	"database/sql"
	"time"
)

type RegionTransition struct {
	ID         string
	DriverID   string
	FromRegion sql.NullString
	ToRegion   sql.NullString
	Kind       string
	Latitude   float64
	Longitude  float64
	OccurredAt time.Time
}
