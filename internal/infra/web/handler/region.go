package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DioGolang/fleettrack/internal/application/region"
	"github.com/DioGolang/fleettrack/internal/domain/entity"
	"github.com/DioGolang/fleettrack/pkg/logger"
)

type RegionCatalog interface {
	List() []region.View
	SetActive(name string, active bool) (region.View, error)
}

type Regions struct {
	Catalog RegionCatalog
	Logger  logger.Logger
}

func NewRegionHandler(c RegionCatalog, log logger.Logger) *Regions {
	return &Regions{Catalog: c, Logger: log}
}

type regionEntry struct {
	Name               string `json:"name"`
	IsActive           bool   `json:"is_active"`
	BoundaryPointCount int    `json:"boundary_point_count"`
}

func toRegionEntry(v region.View) regionEntry {
	return regionEntry{Name: v.Name, IsActive: v.Active, BoundaryPointCount: v.Boundary.NumVertices()}
}

// List handles GET /regions.
func (h *Regions) List(w http.ResponseWriter, r *http.Request) {
	views := h.Catalog.List()
	regions := make(map[string]regionEntry, len(views))
	for _, v := range views {
		regions[v.Name] = toRegionEntry(v)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        statusSuccess,
		"regions":       regions,
		"total_regions": len(regions),
	})
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

// SetActive handles PUT /regions/{region_name}/active.
func (h *Regions) SetActive(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "region_name")

	var req setActiveRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Active == nil {
		writeError(w, http.StatusBadRequest, "Missing required field: active")
		return
	}

	view, err := h.Catalog.SetActive(name, *req.Active)
	if errors.Is(err, entity.ErrRegionNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"status":  statusNotFound,
			"region":  name,
			"message": "Unknown region",
		})
		return
	}
	if err != nil {
		writeInternalError(r.Context(), h.Logger, w, "set_region_active", err)
		return
	}

	h.Logger.Info(r.Context(), "Region toggled",
		logger.String("region", view.Name),
		logger.Bool("active", view.Active),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": statusSuccess,
		"region": toRegionEntry(view),
	})
}
