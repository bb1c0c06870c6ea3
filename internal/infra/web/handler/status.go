package handler

import (
	"net/http"
	"time"

	"github.com/DioGolang/fleettrack/internal/application/tracking"
)

type StatsSource interface {
	Stats() tracking.Stats
}

type Status struct {
	Service string
	Source  StatsSource
	Now     func() time.Time
}

func NewStatusHandler(service string, src StatsSource) *Status {
	return &Status{Service: service, Source: src, Now: time.Now}
}

type statusResponse struct {
	Status         string         `json:"status"`
	Service        string         `json:"service"`
	Timestamp      string         `json:"timestamp"`
	ActiveRegions  int            `json:"active_regions"`
	TrackedDrivers int            `json:"tracked_drivers"`
	StaleDrivers   int            `json:"stale_drivers"`
	DriversPerZone map[string]int `json:"drivers_per_region"`
}

// ServeHTTP handles GET /health.
func (h *Status) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	s := h.Source.Stats()
	writeJSON(w, http.StatusOK, statusResponse{
		Status:         "healthy",
		Service:        h.Service,
		Timestamp:      formatTime(h.Now()),
		ActiveRegions:  s.ActiveRegions,
		TrackedDrivers: s.TrackedDrivers,
		StaleDrivers:   s.StaleDrivers,
		DriversPerZone: s.DriversPerZone,
	})
}
