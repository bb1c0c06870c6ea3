package region

import (
	"sync"
	"testing"

	"github.com/DioGolang/fleettrack/internal/domain/entity"
	"github.com/DioGolang/fleettrack/internal/domain/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(minLng, maxLng, minLat, maxLat float64) []geo.Coordinate {
	return []geo.Coordinate{
		{Latitude: minLat, Longitude: minLng},
		{Latitude: minLat, Longitude: maxLng},
		{Latitude: maxLat, Longitude: maxLng},
		{Latitude: maxLat, Longitude: minLng},
	}
}

func testDefinitions() []Definition {
	return []Definition{
		{Name: "west", Boundary: rect(0, 1, 0, 1), Active: true},
		{Name: "east", Boundary: rect(1, 2, 0, 1), Active: true},
		{Name: "far", Boundary: rect(10, 11, 10, 11), Active: false},
	}
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(testDefinitions())

	require.NoError(t, err)
	assert.Equal(t, 2, reg.ActiveCount())
	names := []string{}
	for _, v := range reg.List() {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"west", "east", "far"}, names)
}

func TestNewRegistry_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		defs        []Definition
		expectedErr error
	}{
		{
			"Should fail on duplicate name",
			[]Definition{{Name: "a", Boundary: rect(0, 1, 0, 1)}, {Name: "a", Boundary: rect(5, 6, 5, 6)}},
			entity.ErrDuplicateRegion,
		},
		{
			"Should fail on overlapping interiors",
			[]Definition{{Name: "a", Boundary: rect(0, 2, 0, 2)}, {Name: "b", Boundary: rect(1, 3, 1, 3)}},
			entity.ErrOverlappingRegions,
		},
		{
			"Should fail on malformed boundary",
			[]Definition{{Name: "a", Boundary: rect(0, 1, 0, 1)[:2]}},
			entity.ErrInvalidRegionBoundary,
		},
		{
			"Should fail on empty name",
			[]Definition{{Name: "", Boundary: rect(0, 1, 0, 1)}},
			entity.ErrRegionNameRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry(tt.defs)

			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Nil(t, reg)
		})
	}
}

func TestRegistry_Classify(t *testing.T) {
	reg, err := NewRegistry(testDefinitions())
	require.NoError(t, err)

	tests := []struct {
		name   string
		point  geo.Coordinate
		want   string
		wantOK bool
	}{
		{"Inside west", geo.Coordinate{Latitude: 0.5, Longitude: 0.5}, "west", true},
		{"Inside east", geo.Coordinate{Latitude: 0.5, Longitude: 1.5}, "east", true},
		{"Shared edge resolves to first registered", geo.Coordinate{Latitude: 0.5, Longitude: 1}, "west", true},
		{"Inactive region is skipped", geo.Coordinate{Latitude: 10.5, Longitude: 10.5}, "", false},
		{"Outside everything", geo.Coordinate{Latitude: -5, Longitude: -5}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := reg.Classify(tt.point)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_Classify_Idempotent(t *testing.T) {
	reg, err := NewRegistry(testDefinitions())
	require.NoError(t, err)
	p := geo.Coordinate{Latitude: 0.25, Longitude: 1.75}

	first, _ := reg.Classify(p)
	for i := 0; i < 10; i++ {
		again, _ := reg.Classify(p)
		assert.Equal(t, first, again)
	}
}

func TestRegistry_SetActive(t *testing.T) {
	reg, err := NewRegistry(testDefinitions())
	require.NoError(t, err)

	view, err := reg.SetActive("far", true)
	require.NoError(t, err)
	assert.True(t, view.Active)
	got, ok := reg.Classify(geo.Coordinate{Latitude: 10.5, Longitude: 10.5})
	assert.True(t, ok)
	assert.Equal(t, "far", got)

	_, err = reg.SetActive("west", false)
	require.NoError(t, err)
	got, _ = reg.Classify(geo.Coordinate{Latitude: 0.5, Longitude: 1})
	assert.Equal(t, "east", got)

	_, err = reg.SetActive("nowhere", true)
	assert.ErrorIs(t, err, entity.ErrRegionNotFound)
}

func TestRegistry_Get(t *testing.T) {
	reg, err := NewRegistry(testDefinitions())
	require.NoError(t, err)

	v, ok := reg.Get("east")
	assert.True(t, ok)
	assert.Equal(t, 4, v.Boundary.NumVertices())
	assert.True(t, reg.Exists("far"))

	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentToggleAndClassify(t *testing.T) {
	reg, err := NewRegistry(testDefinitions())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = reg.SetActive("far", i%2 == 0)
		}(i)
		go func() {
			defer wg.Done()
			name, ok := reg.Classify(geo.Coordinate{Latitude: 0.5, Longitude: 0.5})
			assert.True(t, ok)
			assert.Equal(t, "west", name)
		}()
	}
	wg.Wait()
}
