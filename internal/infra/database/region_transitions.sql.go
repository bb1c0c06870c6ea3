package database

import (
	"context"
	"database/sql"
	"time"
)

const insertRegionTransition = `-- name: InsertRegionTransition :exec
INSERT INTO region_transitions (id, driver_id, from_region, to_region, kind, latitude, longitude, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING
`

type InsertRegionTransitionParams struct {
	ID         string
	DriverID   string
	FromRegion sql.NullString
	ToRegion   sql.NullString
	Kind       string
	Latitude   float64
	Longitude  float64
	OccurredAt time.Time
}

func (q *Queries) InsertRegionTransition(ctx context.Context, arg InsertRegionTransitionParams) error {
	_, err := q.db.ExecContext(ctx, insertRegionTransition,
		arg.ID,
		arg.DriverID,
		arg.FromRegion,
		arg.ToRegion,
		arg.Kind,
		arg.Latitude,
		arg.Longitude,
		arg.OccurredAt,
	)
	return err
}

const listRegionTransitionsByDriver = `-- name: ListRegionTransitionsByDriver :many
SELECT id, driver_id, from_region, to_region, kind, latitude, longitude, occurred_at
FROM region_transitions
WHERE driver_id = $1
ORDER BY occurred_at DESC
LIMIT $2
`

type ListRegionTransitionsByDriverParams struct {
	DriverID string
	Limit    int32
}

func (q *Queries) ListRegionTransitionsByDriver(ctx context.Context, arg ListRegionTransitionsByDriverParams) ([]RegionTransition, error) {
	rows, err := q.db.QueryContext(ctx, listRegionTransitionsByDriver, arg.DriverID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RegionTransition
	for rows.Next() {
		var i RegionTransition
		if err := rows.Scan(
			&i.ID,
			&i.DriverID,
			&i.FromRegion,
			&i.ToRegion,
			&i.Kind,
			&i.Latitude,
			&i.Longitude,
			&i.OccurredAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
