package region

import (
	"fmt"
	"sync"

	"github.com/DioGolang/fleettrack/internal/domain/entity"
	"github.com/DioGolang/fleettrack/internal/domain/geo"
)

// Definition is one row of the region table, as loaded from configuration.
type Definition struct {
	Name     string
	Boundary []geo.Coordinate
	Active   bool
}

// View is a read-only copy of a region handed out to callers.
type View struct {
	Name     string
	Boundary geo.Polygon
	Active   bool
}

// Registry owns the fixed catalog of delivery regions. Only the active flags
// change after construction.
type Registry struct {
	mu      sync.RWMutex
	regions []*entity.DeliveryRegion
	byName  map[string]*entity.DeliveryRegion
}

// NewRegistry builds the catalog in the given order. It fails on a malformed
// boundary, a duplicate name or two regions whose interiors overlap.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		regions: make([]*entity.DeliveryRegion, 0, len(defs)),
		byName:  make(map[string]*entity.DeliveryRegion, len(defs)),
	}
	for _, def := range defs {
		dr, err := entity.NewDeliveryRegion(def.Name, def.Boundary, def.Active)
		if err != nil {
			return nil, err
		}
		if _, dup := r.byName[def.Name]; dup {
			return nil, fmt.Errorf("%w: %s", entity.ErrDuplicateRegion, def.Name)
		}
		for _, existing := range r.regions {
			if existing.Overlaps(dr) {
				return nil, fmt.Errorf("%w: %s and %s", entity.ErrOverlappingRegions, existing.Name(), dr.Name())
			}
		}
		r.regions = append(r.regions, dr)
		r.byName[def.Name] = dr
	}
	return r, nil
}

// Classify returns the first active region, in registration order, whose
// boundary contains c.
func (r *Registry) Classify(c geo.Coordinate) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, dr := range r.regions {
		if dr.IsActive() && dr.Contains(c) {
			return dr.Name(), true
		}
	}
	return "", false
}

// SetActive toggles a region. Stored drivers are reclassified on their next
// ping, not here.
func (r *Registry) SetActive(name string, active bool) (View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dr, ok := r.byName[name]
	if !ok {
		return View{}, fmt.Errorf("%w: %s", entity.ErrRegionNotFound, name)
	}
	dr.SetActive(active)
	return toView(dr), nil
}

func (r *Registry) Get(name string) (View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dr, ok := r.byName[name]
	if !ok {
		return View{}, false
	}
	return toView(dr), true
}

func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}

// List returns every region in registration order.
func (r *Registry) List() []View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]View, 0, len(r.regions))
	for _, dr := range r.regions {
		out = append(out, toView(dr))
	}
	return out
}

func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, dr := range r.regions {
		if dr.IsActive() {
			n++
		}
	}
	return n
}

func toView(dr *entity.DeliveryRegion) View {
	return View{Name: dr.Name(), Boundary: dr.Boundary(), Active: dr.IsActive()}
}
