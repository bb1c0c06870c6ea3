package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/DioGolang/fleettrack/internal/domain/entity"
	"github.com/DioGolang/fleettrack/pkg/logger"
)

const (
	DriverStatesKey    = "fleettrack:driver_states"
	DriverLocationsKey = "drivers_locations"
)

// RedisSnapshotRepository persists the driver table as a hash of JSON states
// and mirrors positions into a geo set for external consumers.
type RedisSnapshotRepository struct {
	client redis.UniversalClient
	logger logger.Logger
}

func NewRedisSnapshotRepository(client redis.UniversalClient, log logger.Logger) *RedisSnapshotRepository {
	return &RedisSnapshotRepository{client: client, logger: log}
}

// Save replaces the previous snapshot atomically.
func (r *RedisSnapshotRepository) Save(ctx context.Context, states []entity.DriverState) error {
	values := make(map[string]interface{}, len(states))
	locations := make([]*redis.GeoLocation, 0, len(states))
	for _, st := range states {
		raw, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("encode state %s: %w", st.DriverID, err)
		}
		values[st.DriverID] = raw
		locations = append(locations, &redis.GeoLocation{
			Name:      st.DriverID,
			Longitude: st.Coordinate.Longitude,
			Latitude:  st.Coordinate.Latitude,
		})
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, DriverStatesKey, DriverLocationsKey)
		if len(values) > 0 {
			pipe.HSet(ctx, DriverStatesKey, values)
			pipe.GeoAdd(ctx, DriverLocationsKey, locations...)
		}
		return nil
	})
	if err != nil {
		r.logger.Error(ctx, "Redis snapshot save failed", logger.WithError(err))
		return fmt.Errorf("redis snapshot save: %w", err)
	}
	r.logger.Debug(ctx, "Redis snapshot saved", logger.Int("drivers", len(states)))
	return nil
}

// Load skips entries it cannot decode instead of failing the whole restore.
func (r *RedisSnapshotRepository) Load(ctx context.Context) ([]entity.DriverState, error) {
	raw, err := r.client.HGetAll(ctx, DriverStatesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis snapshot load: %w", err)
	}

	states := make([]entity.DriverState, 0, len(raw))
	for id, v := range raw {
		var st entity.DriverState
		if err := json.Unmarshal([]byte(v), &st); err != nil || st.DriverID != id {
			r.logger.Warn(ctx, "Skipping corrupt snapshot entry",
				logger.String("driver_id", id),
				logger.WithError(err),
			)
			continue
		}
		if err := st.Coordinate.Validate(); err != nil {
			r.logger.Warn(ctx, "Skipping snapshot entry with invalid coordinate",
				logger.String("driver_id", id),
				logger.WithError(err),
			)
			continue
		}
		states = append(states, st)
	}
	return states, nil
}

func (r *RedisSnapshotRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
