package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DioGolang/fleettrack/pkg/logger"
)

const (
	statusSuccess  = "success"
	statusError    = "error"
	statusNotFound = "not_found"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type coordinatesJSON struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Status: statusError, Message: message})
}

// writeInternalError hides err from the client and logs it instead.
func writeInternalError(ctx context.Context, log logger.Logger, w http.ResponseWriter, op string, err error) {
	log.Error(ctx, "Request failed", logger.String("operation", op), logger.WithError(err))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// nullable maps the empty region to JSON null.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
