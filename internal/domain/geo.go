package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Geo is a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CoordinateParseError reports one GeoLocation cell that could not be turned
// into a coordinate pair. It is a per-record condition: map rendering skips
// the record and counts the skip, table rendering keeps the record because a
// table row needs no coordinate. It never aborts a derivation pass.
type CoordinateParseError struct {
	Raw    string
	Reason string
}

func (e *CoordinateParseError) Error() string {
	return fmt.Sprintf("parse geolocation %q: %s", e.Raw, e.Reason)
}

// ParseGeoLocation extracts the coordinate pair from a GeoLocation cell.
// The published format is "(lat, lng)", but exports vary in wrapping and
// whitespace: "(39.0997, -94.5786)", " 39.0997,-94.5786 ", and longer
// precision all occur. Earlier versions of this project sliced fixed
// character offsets out of each token, which silently corrupted coordinates
// whenever the precision changed; each token is instead trimmed of any
// non-numeric wrapping and parsed in full.
//
// The cell must contain exactly one comma. Anything else, including the
// empty cell of the national rollup row, returns a *CoordinateParseError.
func ParseGeoLocation(raw string) (Geo, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return Geo{}, &CoordinateParseError{Raw: raw, Reason: "want exactly one comma between latitude and longitude"}
	}

	lat, err := parseCoordToken(parts[0])
	if err != nil {
		return Geo{}, &CoordinateParseError{Raw: raw, Reason: "latitude: " + err.Error()}
	}
	lng, err := parseCoordToken(parts[1])
	if err != nil {
		return Geo{}, &CoordinateParseError{Raw: raw, Reason: "longitude: " + err.Error()}
	}

	if lat < -90 || lat > 90 {
		return Geo{}, &CoordinateParseError{Raw: raw, Reason: fmt.Sprintf("latitude %g out of range [-90, 90]", lat)}
	}
	if lng < -180 || lng > 180 {
		return Geo{}, &CoordinateParseError{Raw: raw, Reason: fmt.Sprintf("longitude %g out of range [-180, 180]", lng)}
	}

	return Geo{Lat: lat, Lng: lng}, nil
}

// parseCoordToken strips non-numeric wrapping (parentheses, quotes, spaces)
// from both ends of a token and parses the remainder as a float.
func parseCoordToken(token string) (float64, error) {
	trimmed := strings.TrimFunc(token, func(r rune) bool { return !isCoordRune(r) })
	if trimmed == "" {
		return 0, fmt.Errorf("no numeric content in %q", token)
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", trimmed)
	}
	return v, nil
}

func isCoordRune(r rune) bool {
	return r == '.' || r == '-' || r == '+' || (r >= '0' && r <= '9')
}
