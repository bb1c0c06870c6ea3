package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/DioGolang/fleettrack/internal/domain/entity"
	"github.com/DioGolang/fleettrack/internal/domain/geo"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// TransitionRepositoryImpl journals transitions to Postgres. Save is
// idempotent on the transition id.
type TransitionRepositoryImpl struct {
	Db *sql.DB
	*Queries
}

func NewTransitionRepository(db *sql.DB) *TransitionRepositoryImpl {
	return &TransitionRepositoryImpl{Db: db, Queries: New(db)}
}

func (r *TransitionRepositoryImpl) Save(ctx context.Context, t entity.RegionTransition) error {
	if _, err := uuid.Parse(t.ID); err != nil {
		return fmt.Errorf("transition id %q: %w", t.ID, err)
	}
	err := r.InsertRegionTransition(ctx, InsertRegionTransitionParams{
		ID:         t.ID,
		DriverID:   t.DriverID,
		FromRegion: nullString(t.From),
		ToRegion:   nullString(t.To),
		Kind:       string(t.Kind()),
		Latitude:   t.Coordinate.Latitude,
		Longitude:  t.Coordinate.Longitude,
		OccurredAt: t.At.UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}
	return nil
}

// ListByDriver returns the newest transitions first. limit is clamped to
// [1, MaxHistoryLimit]; zero means DefaultHistoryLimit.
func (r *TransitionRepositoryImpl) ListByDriver(ctx context.Context, driverID string, limit int) ([]entity.RegionTransition, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	rows, err := r.ListRegionTransitionsByDriver(ctx, ListRegionTransitionsByDriverParams{
		DriverID: driverID,
		Limit:    int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}

	out := make([]entity.RegionTransition, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.RegionTransition{
			ID:         row.ID,
			DriverID:   row.DriverID,
			From:       row.FromRegion.String,
			To:         row.ToRegion.String,
			At:         row.OccurredAt.UTC(),
			Coordinate: geo.Coordinate{Latitude: row.Latitude, Longitude: row.Longitude},
		})
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
