package geo

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidPolygon = errors.New("invalid polygon")

// boundaryEpsilon absorbs float noise when testing whether a point lies on
// an edge. Degrees; about 0.1 micrometre at the equator.
const boundaryEpsilon = 1e-12

// Polygon is an immutable simple polygon. Vertices are stored without the
// closing vertex. Points on an edge or a vertex are considered inside.
type Polygon struct {
	vertices []Coordinate
	minLat   float64
	maxLat   float64
	minLng   float64
	maxLng   float64
}

// NewPolygon validates the ring and builds a Polygon. A trailing vertex equal
// to the first one is dropped, as are consecutive duplicates. The ring must
// keep at least three vertices, enclose a non-zero area and not intersect
// itself.
func NewPolygon(vertices []Coordinate) (Polygon, error) {
	ring := make([]Coordinate, 0, len(vertices))
	for i, v := range vertices {
		if err := v.Validate(); err != nil {
			return Polygon{}, fmt.Errorf("%w: vertex %d: %w", ErrInvalidPolygon, i, err)
		}
		if len(ring) > 0 && ring[len(ring)-1] == v {
			continue
		}
		ring = append(ring, v)
	}
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return Polygon{}, fmt.Errorf("%w: need at least 3 distinct vertices, got %d", ErrInvalidPolygon, len(ring))
	}

	p := Polygon{vertices: ring}
	if math.Abs(p.signedArea()) <= boundaryEpsilon {
		return Polygon{}, fmt.Errorf("%w: vertices are collinear", ErrInvalidPolygon)
	}
	if i, j, ok := p.selfIntersection(); ok {
		return Polygon{}, fmt.Errorf("%w: edge %d intersects edge %d", ErrInvalidPolygon, i, j)
	}

	p.minLat, p.maxLat = ring[0].Latitude, ring[0].Latitude
	p.minLng, p.maxLng = ring[0].Longitude, ring[0].Longitude
	for _, v := range ring[1:] {
		p.minLat = math.Min(p.minLat, v.Latitude)
		p.maxLat = math.Max(p.maxLat, v.Latitude)
		p.minLng = math.Min(p.minLng, v.Longitude)
		p.maxLng = math.Max(p.maxLng, v.Longitude)
	}
	return p, nil
}

// Vertices returns a copy of the ring, without the closing vertex.
func (p Polygon) Vertices() []Coordinate {
	out := make([]Coordinate, len(p.vertices))
	copy(out, p.vertices)
	return out
}

// NumVertices returns the number of distinct boundary vertices.
func (p Polygon) NumVertices() int {
	return len(p.vertices)
}

// PointInPolygon reports whether point lies inside poly or on its boundary.
func PointInPolygon(point Coordinate, poly Polygon) (bool, error) {
	if err := point.Validate(); err != nil {
		return false, err
	}
	return poly.Contains(point), nil
}

// Contains is PointInPolygon for an already validated point.
func (p Polygon) Contains(c Coordinate) bool {
	if len(p.vertices) == 0 {
		return false
	}
	if c.Latitude < p.minLat-boundaryEpsilon || c.Latitude > p.maxLat+boundaryEpsilon ||
		c.Longitude < p.minLng-boundaryEpsilon || c.Longitude > p.maxLng+boundaryEpsilon {
		return false
	}
	if p.onBoundary(c) {
		return true
	}
	return p.rayCast(c)
}

// ContainsStrictly reports whether c is inside p and not on its boundary.
func (p Polygon) ContainsStrictly(c Coordinate) bool {
	return p.Contains(c) && !p.onBoundary(c)
}

// InteriorsOverlap reports whether the interiors of p and q share area.
// Polygons that only touch along edges or at vertices do not overlap.
func (p Polygon) InteriorsOverlap(q Polygon) bool {
	if p.maxLat <= q.minLat || q.maxLat <= p.minLat || p.maxLng <= q.minLng || q.maxLng <= p.minLng {
		return false
	}
	n, m := len(p.vertices), len(q.vertices)
	for i := 0; i < n; i++ {
		a1, a2 := p.vertices[i], p.vertices[(i+1)%n]
		for j := 0; j < m; j++ {
			if segmentsCross(a1, a2, q.vertices[j], q.vertices[(j+1)%m]) {
				return true
			}
		}
	}
	for _, v := range p.vertices {
		if q.ContainsStrictly(v) {
			return true
		}
	}
	for _, v := range q.vertices {
		if p.ContainsStrictly(v) {
			return true
		}
	}
	// Shared or nested boundaries: probe edge midpoints against the other
	// ring and vertex centroids against both.
	for _, mid := range p.edgeMidpoints() {
		if q.ContainsStrictly(mid) {
			return true
		}
	}
	for _, mid := range q.edgeMidpoints() {
		if p.ContainsStrictly(mid) {
			return true
		}
	}
	for _, c := range []Coordinate{p.vertexCentroid(), q.vertexCentroid()} {
		if p.ContainsStrictly(c) && q.ContainsStrictly(c) {
			return true
		}
	}
	return false
}

func (p Polygon) onBoundary(c Coordinate) bool {
	n := len(p.vertices)
	for i := 0; i < n; i++ {
		if onSegment(p.vertices[i], p.vertices[(i+1)%n], c) {
			return true
		}
	}
	return false
}

// rayCast is the even-odd rule with a ray towards +longitude.
func (p Polygon) rayCast(c Coordinate) bool {
	inside := false
	x, y := c.Longitude, c.Latitude
	n := len(p.vertices)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := p.vertices[i].Longitude, p.vertices[i].Latitude
		xj, yj := p.vertices[j].Longitude, p.vertices[j].Latitude
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

func (p Polygon) signedArea() float64 {
	var sum float64
	n := len(p.vertices)
	for i := 0; i < n; i++ {
		a, b := p.vertices[i], p.vertices[(i+1)%n]
		sum += a.Longitude*b.Latitude - b.Longitude*a.Latitude
	}
	return sum / 2
}

func (p Polygon) selfIntersection() (int, int, bool) {
	n := len(p.vertices)
	for i := 0; i < n; i++ {
		a1, a2 := p.vertices[i], p.vertices[(i+1)%n]

		// Adjacent edge folding back onto this one.
		b := p.vertices[(i+2)%n]
		if math.Abs(orientation(a1, a2, b)) <= boundaryEpsilon && dot(a1, a2, b) < 0 {
			return i, (i + 1) % n, true
		}

		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if segmentsIntersect(a1, a2, p.vertices[j], p.vertices[(j+1)%n]) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func (p Polygon) edgeMidpoints() []Coordinate {
	n := len(p.vertices)
	out := make([]Coordinate, 0, n)
	for i := 0; i < n; i++ {
		a, b := p.vertices[i], p.vertices[(i+1)%n]
		out = append(out, Coordinate{Latitude: (a.Latitude + b.Latitude) / 2, Longitude: (a.Longitude + b.Longitude) / 2})
	}
	return out
}

func (p Polygon) vertexCentroid() Coordinate {
	var c Coordinate
	for _, v := range p.vertices {
		c.Latitude += v.Latitude
		c.Longitude += v.Longitude
	}
	n := float64(len(p.vertices))
	return Coordinate{Latitude: c.Latitude / n, Longitude: c.Longitude / n}
}

// orientation is the z component of (b-a) x (c-a) with x=longitude, y=latitude.
func orientation(a, b, c Coordinate) float64 {
	return (b.Longitude-a.Longitude)*(c.Latitude-a.Latitude) - (b.Latitude-a.Latitude)*(c.Longitude-a.Longitude)
}

// dot is (b-a)·(c-b): negative when the path a->b->c turns back on itself.
func dot(a, b, c Coordinate) float64 {
	return (b.Longitude-a.Longitude)*(c.Longitude-b.Longitude) + (b.Latitude-a.Latitude)*(c.Latitude-b.Latitude)
}

func onSegment(a, b, c Coordinate) bool {
	if math.Abs(orientation(a, b, c)) > boundaryEpsilon {
		return false
	}
	return c.Longitude >= math.Min(a.Longitude, b.Longitude)-boundaryEpsilon &&
		c.Longitude <= math.Max(a.Longitude, b.Longitude)+boundaryEpsilon &&
		c.Latitude >= math.Min(a.Latitude, b.Latitude)-boundaryEpsilon &&
		c.Latitude <= math.Max(a.Latitude, b.Latitude)+boundaryEpsilon
}

func sign(v float64) int {
	switch {
	case v > boundaryEpsilon:
		return 1
	case v < -boundaryEpsilon:
		return -1
	}
	return 0
}

// segmentsCross reports a proper crossing: the segments meet at a single
// point interior to both.
func segmentsCross(p1, p2, q1, q2 Coordinate) bool {
	d1 := sign(orientation(q1, q2, p1))
	d2 := sign(orientation(q1, q2, p2))
	d3 := sign(orientation(p1, p2, q1))
	d4 := sign(orientation(p1, p2, q2))
	return d1*d2 < 0 && d3*d4 < 0
}

// segmentsIntersect includes touching and collinear overlap.
func segmentsIntersect(p1, p2, q1, q2 Coordinate) bool {
	if segmentsCross(p1, p2, q1, q2) {
		return true
	}
	return onSegment(q1, q2, p1) || onSegment(q1, q2, p2) ||
		onSegment(p1, p2, q1) || onSegment(p1, p2, q2)
}
