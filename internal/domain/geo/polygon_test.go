package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(minLng, maxLng, minLat, maxLat float64) []Coordinate {
	return []Coordinate{
		{Latitude: minLat, Longitude: minLng},
		{Latitude: minLat, Longitude: maxLng},
		{Latitude: maxLat, Longitude: maxLng},
		{Latitude: maxLat, Longitude: minLng},
	}
}

func mustPolygon(t *testing.T, vertices []Coordinate) Polygon {
	t.Helper()
	p, err := NewPolygon(vertices)
	require.NoError(t, err)
	return p
}

func TestNewPolygon(t *testing.T) {
	//Arrange
	closed := append(rect(-75.20, -75.12, 39.98, 40.02), Coordinate{Latitude: 39.98, Longitude: -75.20})

	//Act
	p, err := NewPolygon(closed)

	//Assert
	require.NoError(t, err)
	assert.Equal(t, 4, p.NumVertices())
	assert.Equal(t, rect(-75.20, -75.12, 39.98, 40.02), p.Vertices())
}

func TestNewPolygon_VerticesIsACopy(t *testing.T) {
	p := mustPolygon(t, rect(0, 1, 0, 1))

	v := p.Vertices()
	v[0] = Coordinate{Latitude: 50, Longitude: 50}

	assert.Equal(t, Coordinate{Latitude: 0, Longitude: 0}, p.Vertices()[0])
}

func TestNewPolygon_DropsConsecutiveDuplicates(t *testing.T) {
	vertices := []Coordinate{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 1},
		{Latitude: 1, Longitude: 1},
		{Latitude: 1, Longitude: 1},
		{Latitude: 1, Longitude: 0},
	}

	p, err := NewPolygon(vertices)

	require.NoError(t, err)
	assert.Equal(t, 4, p.NumVertices())
}

func TestNewPolygon_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		vertices []Coordinate
	}{
		{"Should fail with no vertices", nil},
		{"Should fail with two vertices", []Coordinate{{0, 0}, {1, 1}}},
		{"Should fail when closing vertex leaves two", []Coordinate{{0, 0}, {1, 1}, {0, 0}}},
		{"Should fail with collinear vertices", []Coordinate{{0, 0}, {1, 1}, {2, 2}}},
		{"Should fail with out of range latitude", []Coordinate{{0, 0}, {91, 0}, {0, 1}}},
		{"Should fail with NaN longitude", []Coordinate{{0, 0}, {1, math.NaN()}, {0, 1}}},
		{"Should fail with bow tie", []Coordinate{{0, 0}, {1, 1}, {1, 0}, {0, 1}}},
		{"Should fail with edge folding back", []Coordinate{{0, 0}, {0, 2}, {0, 1}, {1, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPolygon(tt.vertices)

			assert.ErrorIs(t, err, ErrInvalidPolygon)
		})
	}
}

func TestPointInPolygon(t *testing.T) {
	square := mustPolygon(t, rect(-75.20, -75.12, 39.98, 40.02))
	concave := mustPolygon(t, []Coordinate{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 4},
		{Latitude: 4, Longitude: 4},
		{Latitude: 4, Longitude: 3},
		{Latitude: 1, Longitude: 3},
		{Latitude: 1, Longitude: 1},
		{Latitude: 4, Longitude: 1},
		{Latitude: 4, Longitude: 0},
	})

	tests := []struct {
		name  string
		poly  Polygon
		point Coordinate
		want  bool
	}{
		{"Center is inside", square, Coordinate{Latitude: 40.00, Longitude: -75.16}, true},
		{"Far away is outside", square, Coordinate{Latitude: 41.0, Longitude: -74.0}, false},
		{"Vertex is inside", square, Coordinate{Latitude: 39.98, Longitude: -75.20}, true},
		{"Edge is inside", square, Coordinate{Latitude: 40.02, Longitude: -75.16}, true},
		{"Just outside edge", square, Coordinate{Latitude: 40.0201, Longitude: -75.16}, false},
		{"Ray through vertex level", square, Coordinate{Latitude: 39.98, Longitude: -75.30}, false},
		{"Concave notch is outside", concave, Coordinate{Latitude: 3, Longitude: 2}, false},
		{"Concave arm is inside", concave, Coordinate{Latitude: 3, Longitude: 0.5}, true},
		{"Concave base is inside", concave, Coordinate{Latitude: 0.5, Longitude: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PointInPolygon(tt.point, tt.poly)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPointInPolygon_InvalidPoint(t *testing.T) {
	square := mustPolygon(t, rect(0, 1, 0, 1))

	_, err := PointInPolygon(Coordinate{Latitude: 100, Longitude: 0}, square)

	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestPolygon_InteriorsOverlap(t *testing.T) {
	base := mustPolygon(t, rect(0, 2, 0, 2))

	tests := []struct {
		name  string
		other []Coordinate
		want  bool
	}{
		{"Shared edge only", rect(2, 4, 0, 2), false},
		{"Shared corner only", rect(2, 4, 2, 4), false},
		{"Disjoint", rect(5, 6, 5, 6), false},
		{"Partial overlap", rect(1, 3, 1, 3), true},
		{"Cross shape", rect(0.5, 1.5, -1, 3), true},
		{"Identical", rect(0, 2, 0, 2), true},
		{"Nested sharing two edges", rect(0, 1, 0, 2), true},
		{"Strictly nested", rect(0.5, 1.5, 0.5, 1.5), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := mustPolygon(t, tt.other)

			assert.Equal(t, tt.want, base.InteriorsOverlap(other))
			assert.Equal(t, tt.want, other.InteriorsOverlap(base))
		})
	}
}
