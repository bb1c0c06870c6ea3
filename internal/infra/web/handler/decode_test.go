package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlexFloat(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{name: "number", raw: `39.99`, want: 39.99},
		{name: "negative number", raw: `-75.15`, want: -75.15},
		{name: "numeric string", raw: `"39.99"`, want: 39.99},
		{name: "padded string", raw: `" -75.15 "`, want: -75.15},
		{name: "word", raw: `"north"`, wantErr: true},
		{name: "null", raw: `null`, wantErr: true},
		{name: "bool", raw: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlexFloat(json.RawMessage(tt.raw))

			if tt.wantErr {
				assert.ErrorIs(t, err, errNotNumeric)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	tests := []struct {
		name  string
		input string
	}{
		{name: "rfc3339 zulu", input: "2024-03-01T12:30:00Z"},
		{name: "rfc3339 offset", input: "2024-03-01T07:30:00-05:00"},
		{name: "naive iso", input: "2024-03-01T12:30:00"},
		{name: "naive with space", input: "2024-03-01 12:30:00"},
		{name: "naive fractional", input: "2024-03-01T12:30:00.000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimestamp(tt.input)

			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	_, err := parseTimestamp("yesterday")
	assert.EqualError(t, err, "Invalid timestamp format")
}

func TestDecodeLocationUpdate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "empty body", body: ``, message: "No JSON data provided"},
		{name: "empty object", body: `{}`, message: "No JSON data provided"},
		{name: "not json", body: `driver=1`, message: "Invalid JSON body"},
		{name: "array", body: `[1,2]`, message: "Invalid JSON body"},
		{name: "missing driver", body: `{"latitude":1,"longitude":2}`, message: "Missing required field: driver_id"},
		{name: "missing latitude", body: `{"driver_id":"d1","longitude":2}`, message: "Missing required field: latitude"},
		{name: "missing longitude", body: `{"driver_id":"d1","latitude":1}`, message: "Missing required field: longitude"},
		{name: "numeric driver", body: `{"driver_id":7,"latitude":1,"longitude":2}`, message: "driver_id must be a string"},
		{name: "null latitude", body: `{"driver_id":"d1","latitude":null,"longitude":2}`, message: "Invalid coordinate values: latitude is not a number"},
		{name: "word longitude", body: `{"driver_id":"d1","latitude":1,"longitude":"east"}`, message: "Invalid coordinate values: longitude is not a number"},
		{name: "bad timestamp", body: `{"driver_id":"d1","latitude":1,"longitude":2,"timestamp":"soon"}`, message: "Invalid timestamp format"},
		{name: "numeric timestamp", body: `{"driver_id":"d1","latitude":1,"longitude":2,"timestamp":17}`, message: "Invalid timestamp format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/location-update", strings.NewReader(tt.body))

			_, err := decodeLocationUpdate(req)

			assert.EqualError(t, err, tt.message)
		})
	}
}

func TestDecodeLocationUpdate_Valid(t *testing.T) {
	//Arrange
	body := `{"driver_id":"d1","latitude":"39.99","longitude":-75.15,"timestamp":null}`
	req := httptest.NewRequest("POST", "/location-update", strings.NewReader(body))

	//Act
	in, err := decodeLocationUpdate(req)

	//Assert
	require.NoError(t, err)
	assert.Equal(t, "d1", in.DriverID)
	assert.InDelta(t, 39.99, in.Coordinate.Latitude, 1e-12)
	assert.InDelta(t, -75.15, in.Coordinate.Longitude, 1e-12)
	assert.Nil(t, in.Timestamp)
}
