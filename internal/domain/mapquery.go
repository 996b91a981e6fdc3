package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// OSMMapURLFormat is the OpenStreetMap address the renderer prints. The
// fragment order is zoom/lon/lat as the service has always produced it,
// even though openstreetmap.org reads the fragment as zoom/lat/lon.
const OSMMapURLFormat = "https://www.openstreetmap.org/#map=%d/%s/%s"

// Fallback values used when a parameter is absent or cannot be parsed.
const (
	DefaultLongitude = 46.52253
	DefaultLatitude  = 6.62530
	DefaultZoom      = 18
)

var (
	// ErrZoomMissing is returned when the mandatory zoom parameter is absent.
	ErrZoomMissing = errors.New("parameter zoom is missing")
	// ErrInvalidParams wraps every malformed numeric parameter.
	ErrInvalidParams = errors.New("error in parameters values")
)

// MapQuery is the parsed form of a print request.
type MapQuery struct {
	Zoom      int
	Longitude float64
	Latitude  float64
	Dump      int
}

// DefaultMapQuery returns the query with every fallback applied.
func DefaultMapQuery() MapQuery {
	return MapQuery{
		Zoom:      DefaultZoom,
		Longitude: DefaultLongitude,
		Latitude:  DefaultLatitude,
	}
}

// IsDump reports whether the caller asked for the diagnostic JSON instead of a PDF.
func (q MapQuery) IsDump() bool {
	return q.Dump == 1
}

// URL returns the map address for this query.
func (q MapQuery) URL() string {
	return MapURL(q.Zoom, q.Longitude, q.Latitude)
}

// MapURL builds the OpenStreetMap address for zoom z at (lon, lat).
// Coordinates use the shortest representation that round-trips.
func MapURL(z int, lon, lat float64) string {
	return fmt.Sprintf(OSMMapURLFormat, z, formatCoord(lon), formatCoord(lat))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseMapQuery reads zoom, lon, lat and dump from params.
//
// A missing zoom yields ErrZoomMissing and a zero query. Otherwise every
// value starts from its default and is overwritten only when it parses, so
// the returned query is always usable. Parse failures are collected into a
// single error wrapping ErrInvalidParams; callers decide whether to reject
// the request or carry on with the defaults.
func ParseMapQuery(params map[string]string) (MapQuery, error) {
	if _, ok := params["zoom"]; !ok {
		return MapQuery{}, ErrZoomMissing
	}

	q := DefaultMapQuery()
	var problems []string

	if raw, ok := params["lon"]; ok {
		if v, err := parseCoord(raw); err != nil {
			problems = append(problems, "lon: "+err.Error())
		} else {
			q.Longitude = v
		}
	}
	if raw, ok := params["lat"]; ok {
		if v, err := parseCoord(raw); err != nil {
			problems = append(problems, "lat: "+err.Error())
		} else {
			q.Latitude = v
		}
	}
	if v, err := strconv.Atoi(strings.TrimSpace(params["zoom"])); err != nil {
		problems = append(problems, "zoom: "+err.Error())
	} else {
		q.Zoom = v
	}
	if raw, ok := params["dump"]; ok {
		if v, err := strconv.Atoi(strings.TrimSpace(raw)); err != nil {
			problems = append(problems, "dump: "+err.Error())
		} else {
			q.Dump = v
		}
	}

	if len(problems) > 0 {
		return q, fmt.Errorf("%w, %s", ErrInvalidParams, strings.Join(problems, "; "))
	}
	return q, nil
}

// parseCoord rejects NaN and infinities, which have no JSON or URL form.
func parseCoord(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", raw)
	}
	return v, nil
}
