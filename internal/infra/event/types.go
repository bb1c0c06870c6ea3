package event

import (
	"context"
	"time"

	"github.com/DioGolang/fleettrack/internal/domain/entity"
)

type MessageHandler func(ctx context.Context, msg []byte, headers map[string]interface{}) error

const (
	HeaderEventID = "x-event-id"
	// HeaderRedelivered carries a bool set by transports whose message ids
	// are recycled, such as MQTT packet identifiers.
	HeaderRedelivered = "x-redelivered"
)

// TransitionMessage is the wire form of a region transition shared by every
// sink. Absent regions are encoded as null.
type TransitionMessage struct {
	ID         string    `json:"id"`
	DriverID   string    `json:"driver_id"`
	From       *string   `json:"from_region"`
	To         *string   `json:"to_region"`
	Kind       string    `json:"kind"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewTransitionMessage(t entity.RegionTransition) TransitionMessage {
	return TransitionMessage{
		ID:         t.ID,
		DriverID:   t.DriverID,
		From:       optional(t.From),
		To:         optional(t.To),
		Kind:       string(t.Kind()),
		Latitude:   t.Coordinate.Latitude,
		Longitude:  t.Coordinate.Longitude,
		OccurredAt: t.At.UTC(),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func RoutingKey(t entity.RegionTransition) string {
	return "region." + string(t.Kind())
}
