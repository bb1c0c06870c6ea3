package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineDistanceMeters(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Coordinate
		want  float64
		delta float64
	}{
		{"Same point", Coordinate{39.95, -75.16}, Coordinate{39.95, -75.16}, 0, 1e-9},
		{"One degree of latitude", Coordinate{0, 0}, Coordinate{1, 0}, 111195, 1},
		{"City hall to Camden", Coordinate{39.9526, -75.1652}, Coordinate{39.9259, -75.1196}, 4890, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HaversineDistanceMeters(tt.a, tt.b)

			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestHaversineDistanceMeters_Symmetric(t *testing.T) {
	a := Coordinate{Latitude: 40.0, Longitude: -75.1}
	b := Coordinate{Latitude: 39.8, Longitude: -74.9}

	ab, err := HaversineDistanceMeters(a, b)
	require.NoError(t, err)
	ba, err := HaversineDistanceMeters(b, a)
	require.NoError(t, err)

	assert.InDelta(t, ab, ba, 1e-9)
}

func TestHaversineDistanceMeters_InvalidInput(t *testing.T) {
	_, err := HaversineDistanceMeters(Coordinate{Latitude: -91}, Coordinate{})

	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestNewCoordinate(t *testing.T) {
	c, err := NewCoordinate(39.95, -75.16)
	require.NoError(t, err)
	assert.Equal(t, Coordinate{Latitude: 39.95, Longitude: -75.16}, c)

	_, err = NewCoordinate(0, 181)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}
