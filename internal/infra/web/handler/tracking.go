package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DioGolang/fleettrack/internal/application/tracking"
	"github.com/DioGolang/fleettrack/internal/domain/entity"
	"github.com/DioGolang/fleettrack/internal/domain/geo"
	"github.com/DioGolang/fleettrack/pkg/logger"
)

const (
	maxBodyBytes        = 1 << 20
	defaultNearbyRadius = 5000.0
	defaultNearbyLimit  = 20
)

type TrackingQueries interface {
	CurrentRegion(driverID string) (tracking.DriverView, error)
	Drivers() []tracking.DriverView
	DriversInRegion(region string) ([]tracking.DriverView, error)
	Nearby(center geo.Coordinate, radiusMeters float64, limit int) ([]tracking.NearbyDriver, error)
	DeliveryEstimate(driverID string, destination geo.Coordinate) (tracking.Estimate, error)
}

type Tracking struct {
	RecordLocationUseCase tracking.RecordLocationUseCase
	Queries               TrackingQueries
	Logger                logger.Logger
}

func NewTrackingHandler(uc tracking.RecordLocationUseCase, q TrackingQueries, log logger.Logger) *Tracking {
	return &Tracking{RecordLocationUseCase: uc, Queries: q, Logger: log}
}

type locationResponse struct {
	Status      string          `json:"status"`
	DriverID    string          `json:"driver_id"`
	Region      *string         `json:"region"`
	Timestamp   string          `json:"timestamp"`
	Coordinates coordinatesJSON `json:"coordinates"`
	Stale       *bool           `json:"stale,omitempty"`
}

type notFoundResponse struct {
	Status   string `json:"status"`
	DriverID string `json:"driver_id"`
	Message  string `json:"message"`
}

type driverEntry struct {
	DriverID    string          `json:"driver_id,omitempty"`
	Region      *string         `json:"region"`
	Timestamp   string          `json:"timestamp"`
	Coordinates coordinatesJSON `json:"coordinates"`
	Stale       bool            `json:"stale"`
}

type nearbyEntry struct {
	driverEntry
	DistanceMeters float64 `json:"distance_meters"`
}

func toDriverEntry(v tracking.DriverView, withID bool) driverEntry {
	e := driverEntry{
		Region:      nullable(v.Region),
		Timestamp:   formatTime(v.Timestamp),
		Coordinates: coordinatesJSON{Latitude: v.Coordinate.Latitude, Longitude: v.Coordinate.Longitude},
		Stale:       v.Stale,
	}
	if withID {
		e.DriverID = v.DriverID
	}
	return e
}

// RecordLocation handles POST /location-update.
func (h *Tracking) RecordLocation(w http.ResponseWriter, r *http.Request) {
	input, err := decodeLocationUpdate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.RecordLocationUseCase.Execute(r.Context(), input)
	switch {
	case errors.Is(err, geo.ErrInvalidCoordinate):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid coordinate values: %v", err))
		return
	case errors.Is(err, entity.ErrDriverIDRequired):
		writeError(w, http.StatusBadRequest, "driver_id must not be empty")
		return
	case err != nil:
		writeInternalError(r.Context(), h.Logger, w, "record_location", err)
		return
	}

	writeJSON(w, http.StatusOK, locationResponse{
		Status:      statusSuccess,
		DriverID:    out.DriverID,
		Region:      nullable(out.Region),
		Timestamp:   formatTime(out.Timestamp),
		Coordinates: coordinatesJSON{Latitude: out.Coordinate.Latitude, Longitude: out.Coordinate.Longitude},
	})
}

func decodeLocationUpdate(r *http.Request) (tracking.RecordLocationInput, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return tracking.RecordLocationInput{}, invalid("Could not read request body")
	}
	var fields map[string]json.RawMessage
	if len(body) == 0 {
		return tracking.RecordLocationInput{}, invalid("No JSON data provided")
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return tracking.RecordLocationInput{}, invalid("Invalid JSON body")
	}
	if len(fields) == 0 {
		return tracking.RecordLocationInput{}, invalid("No JSON data provided")
	}
	for _, name := range []string{"driver_id", "latitude", "longitude"} {
		if _, ok := fields[name]; !ok {
			return tracking.RecordLocationInput{}, invalid("Missing required field: %s", name)
		}
	}

	var input tracking.RecordLocationInput
	if err := json.Unmarshal(fields["driver_id"], &input.DriverID); err != nil {
		return input, invalid("driver_id must be a string")
	}
	lat, err := parseFlexFloat(fields["latitude"])
	if err != nil {
		return input, invalid("Invalid coordinate values: latitude is %v", err)
	}
	lng, err := parseFlexFloat(fields["longitude"])
	if err != nil {
		return input, invalid("Invalid coordinate values: longitude is %v", err)
	}
	input.Coordinate = geo.Coordinate{Latitude: lat, Longitude: lng}

	if raw, ok := fields["timestamp"]; ok && string(raw) != "null" {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return input, invalid("Invalid timestamp format")
		}
		ts, err := parseTimestamp(s)
		if err != nil {
			return input, err
		}
		input.Timestamp = &ts
	}
	return input, nil
}

// CurrentRegion handles GET /current-region/{driver_id}.
func (h *Tracking) CurrentRegion(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "driver_id")
	view, err := h.Queries.CurrentRegion(driverID)
	if errors.Is(err, entity.ErrDriverNotFound) {
		writeJSON(w, http.StatusNotFound, notFoundResponse{
			Status:   statusNotFound,
			DriverID: driverID,
			Message:  "No location data available",
		})
		return
	}
	if err != nil {
		writeInternalError(r.Context(), h.Logger, w, "current_region", err)
		return
	}

	stale := view.Stale
	writeJSON(w, http.StatusOK, locationResponse{
		Status:      statusSuccess,
		DriverID:    view.DriverID,
		Region:      nullable(view.Region),
		Timestamp:   formatTime(view.Timestamp),
		Coordinates: coordinatesJSON{Latitude: view.Coordinate.Latitude, Longitude: view.Coordinate.Longitude},
		Stale:       &stale,
	})
}

// Drivers handles GET /drivers.
func (h *Tracking) Drivers(w http.ResponseWriter, r *http.Request) {
	views := h.Queries.Drivers()
	drivers := make(map[string]driverEntry, len(views))
	for _, v := range views {
		drivers[v.DriverID] = toDriverEntry(v, false)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        statusSuccess,
		"drivers":       drivers,
		"total_drivers": len(drivers),
	})
}

// DriversInRegion handles GET /region/{region_name}/drivers.
func (h *Tracking) DriversInRegion(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "region_name")
	views, err := h.Queries.DriversInRegion(name)
	if errors.Is(err, entity.ErrRegionNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"status":  statusNotFound,
			"region":  name,
			"message": "Unknown region",
		})
		return
	}
	if err != nil {
		writeInternalError(r.Context(), h.Logger, w, "drivers_in_region", err)
		return
	}

	drivers := make([]driverEntry, 0, len(views))
	for _, v := range views {
		drivers = append(drivers, toDriverEntry(v, true))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  statusSuccess,
		"region":  name,
		"drivers": drivers,
		"count":   len(drivers),
	})
}

// Nearby handles GET /drivers/nearby.
func (h *Tracking) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	center, err := queryCoordinate(q.Get("latitude"), q.Get("longitude"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	radius, err := parseQueryFloat(q.Get("radius_meters"), "radius_meters", false, defaultNearbyRadius)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseQueryInt(q.Get("limit"), "limit", defaultNearbyLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	found, err := h.Queries.Nearby(center, radius, limit)
	switch {
	case errors.Is(err, geo.ErrInvalidCoordinate), errors.Is(err, tracking.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeInternalError(r.Context(), h.Logger, w, "nearby", err)
		return
	}

	drivers := make([]nearbyEntry, 0, len(found))
	for _, d := range found {
		drivers = append(drivers, nearbyEntry{driverEntry: toDriverEntry(d.DriverView, true), DistanceMeters: d.DistanceMeters})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        statusSuccess,
		"center":        coordinatesJSON{Latitude: center.Latitude, Longitude: center.Longitude},
		"radius_meters": radius,
		"drivers":       drivers,
		"count":         len(drivers),
	})
}

// DeliveryEstimate handles GET /delivery-estimate/{driver_id}.
func (h *Tracking) DeliveryEstimate(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "driver_id")
	q := r.URL.Query()
	dest, err := queryCoordinate(q.Get("latitude"), q.Get("longitude"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	est, err := h.Queries.DeliveryEstimate(driverID, dest)
	switch {
	case errors.Is(err, geo.ErrInvalidCoordinate):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, entity.ErrDriverNotFound):
		writeJSON(w, http.StatusNotFound, notFoundResponse{
			Status:   statusNotFound,
			DriverID: driverID,
			Message:  "No location data available",
		})
		return
	case err != nil:
		writeInternalError(r.Context(), h.Logger, w, "delivery_estimate", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":             statusSuccess,
		"driver_id":          est.DriverID,
		"region":             nullable(est.DriverRegion),
		"destination_region": nullable(est.DestinationRegion),
		"distance_meters":    est.DistanceMeters,
		"min_minutes":        est.MinMinutes,
		"max_minutes":        est.MaxMinutes,
		"extra_minutes":      est.ExtraMinutes,
		"estimate":           est.String(),
		"generated_at":       formatTime(time.Now()),
	})
}

func queryCoordinate(lat, lng string) (geo.Coordinate, error) {
	la, err := parseQueryFloat(lat, "latitude", true, 0)
	if err != nil {
		return geo.Coordinate{}, err
	}
	lo, err := parseQueryFloat(lng, "longitude", true, 0)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return geo.Coordinate{Latitude: la, Longitude: lo}, nil
}
