package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapURL(t *testing.T) {
	tests := []struct {
		zoom     int
		lon, lat float64
		want     string
	}{
		{14, 46.78, 6.66, "https://www.openstreetmap.org/#map=14/46.78/6.66"},
		{18, DefaultLongitude, DefaultLatitude, "https://www.openstreetmap.org/#map=18/46.52253/6.6253"},
		{3, -122.4194, 37.7749, "https://www.openstreetmap.org/#map=3/-122.4194/37.7749"},
		{0, 0, 0, "https://www.openstreetmap.org/#map=0/0/0"},
		{12, 7, -45.5, "https://www.openstreetmap.org/#map=12/7/-45.5"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, MapURL(tc.zoom, tc.lon, tc.lat))
		})
	}
}

func TestMapURL_KeepsZoomLonLatOrder(t *testing.T) {
	q := MapQuery{Zoom: 9, Longitude: 1.5, Latitude: 2.5}
	assert.Equal(t, "https://www.openstreetmap.org/#map=9/1.5/2.5", q.URL())
}

func TestParseMapQuery_AllValues(t *testing.T) {
	q, err := ParseMapQuery(map[string]string{"zoom": "14", "lon": "46.78", "lat": "6.66", "dump": "1"})
	require.NoError(t, err)
	assert.Equal(t, MapQuery{Zoom: 14, Longitude: 46.78, Latitude: 6.66, Dump: 1}, q)
	assert.True(t, q.IsDump())
}

func TestParseMapQuery_MissingZoom(t *testing.T) {
	_, err := ParseMapQuery(map[string]string{"lon": "1", "lat": "2"})
	assert.ErrorIs(t, err, ErrZoomMissing)
	assert.Equal(t, "parameter zoom is missing", err.Error())
}

func TestParseMapQuery_AbsentCoordinatesUseDefaults(t *testing.T) {
	q, err := ParseMapQuery(map[string]string{"zoom": "10"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLongitude, q.Longitude)
	assert.Equal(t, DefaultLatitude, q.Latitude)
	assert.False(t, q.IsDump())
	assert.Equal(t, "https://www.openstreetmap.org/#map=10/46.52253/6.6253", q.URL())
}

func TestParseMapQuery_MalformedValuesKeepDefaults(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		want   MapQuery
		field  string
	}{
		{"zoom", map[string]string{"zoom": "abc", "lon": "1", "lat": "2"}, MapQuery{Zoom: DefaultZoom, Longitude: 1, Latitude: 2}, "zoom:"},
		{"empty zoom", map[string]string{"zoom": ""}, DefaultMapQuery(), "zoom:"},
		{"lon", map[string]string{"zoom": "5", "lon": "east"}, MapQuery{Zoom: 5, Longitude: DefaultLongitude, Latitude: DefaultLatitude}, "lon:"},
		{"lat nan", map[string]string{"zoom": "5", "lat": "NaN"}, MapQuery{Zoom: 5, Longitude: DefaultLongitude, Latitude: DefaultLatitude}, "lat:"},
		{"lon inf", map[string]string{"zoom": "5", "lon": "+Inf"}, MapQuery{Zoom: 5, Longitude: DefaultLongitude, Latitude: DefaultLatitude}, "lon:"},
		{"dump", map[string]string{"zoom": "5", "dump": "yes"}, MapQuery{Zoom: 5, Longitude: DefaultLongitude, Latitude: DefaultLatitude}, "dump:"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := ParseMapQuery(tc.params)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParams))
			assert.Contains(t, err.Error(), "error in parameters values, ")
			assert.Contains(t, err.Error(), tc.field)
			assert.Equal(t, tc.want, q)
		})
	}
}

func TestParseMapQuery_CollectsEveryProblem(t *testing.T) {
	_, err := ParseMapQuery(map[string]string{"zoom": "x", "lon": "y", "lat": "z"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lon:")
	assert.Contains(t, err.Error(), "lat:")
	assert.Contains(t, err.Error(), "zoom:")
}

func TestParseMapQuery_TrimsWhitespace(t *testing.T) {
	q, err := ParseMapQuery(map[string]string{"zoom": " 7 ", "lon": " 1.25", "lat": "2.5 "})
	require.NoError(t, err)
	assert.Equal(t, MapQuery{Zoom: 7, Longitude: 1.25, Latitude: 2.5}, q)
}
