package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DioGolang/fleettrack/internal/domain/entity"
	"github.com/DioGolang/fleettrack/pkg/logger"
)

type TransitionHistory interface {
	ListByDriver(ctx context.Context, driverID string, limit int) ([]entity.RegionTransition, error)
}

type Transitions struct {
	History TransitionHistory
	Logger  logger.Logger
}

func NewTransitionHandler(h TransitionHistory, log logger.Logger) *Transitions {
	return &Transitions{History: h, Logger: log}
}

type transitionEntry struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	From        *string         `json:"from_region"`
	To          *string         `json:"to_region"`
	OccurredAt  string          `json:"occurred_at"`
	Coordinates coordinatesJSON `json:"coordinates"`
}

// List handles GET /drivers/{driver_id}/transitions.
func (h *Transitions) List(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "driver_id")
	limit, err := parseQueryInt(r.URL.Query().Get("limit"), "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	history, err := h.History.ListByDriver(r.Context(), driverID, limit)
	if err != nil {
		writeInternalError(r.Context(), h.Logger, w, "list_transitions", err)
		return
	}

	out := make([]transitionEntry, 0, len(history))
	for _, t := range history {
		out = append(out, transitionEntry{
			ID:          t.ID,
			Kind:        string(t.Kind()),
			From:        nullable(t.From),
			To:          nullable(t.To),
			OccurredAt:  formatTime(t.At),
			Coordinates: coordinatesJSON{Latitude: t.Coordinate.Latitude, Longitude: t.Coordinate.Longitude},
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      statusSuccess,
		"driver_id":   driverID,
		"transitions": out,
		"count":       len(out),
	})
}
