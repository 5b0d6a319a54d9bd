package domain

import (
	"sort"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const earthRadiusKm = 6371.0

// MapPoint is one rendered map marker.
type MapPoint struct {
	ID         string  `json:"id"` // place key, stable across re-derivations
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Label      string  `json:"label"` // "CityName StateAbbr"
	Color      string  `json:"color"` // "#rrggbb" from the binner
	Value      float64 `json:"value"`
	Population int64   `json:"population,omitempty"`
}

// TableRow is one rendered table row.
type TableRow struct {
	City       string  `json:"city"`
	State      string  `json:"state"`
	Value      float64 `json:"value"`
	Population int64   `json:"population,omitempty"`
}

// Viewport is the bounding box of a marker set plus its center, used to fit
// the map to the rendered data.
type Viewport struct {
	South     float64 `json:"south"`
	West      float64 `json:"west"`
	North     float64 `json:"north"`
	East      float64 `json:"east"`
	CenterLat float64 `json:"center_lat"`
	CenterLng float64 `json:"center_lng"`
}

// ToMapPoints converts filtered records into colored markers. A record whose
// GeoLocation does not parse is skipped and counted, never fatal: the same
// record still appears in the table, which needs no coordinate. The skip
// count comes back so callers can report "n of m rendered".
func ToMapPoints(records []Record, binner *Binner) ([]MapPoint, int) {
	points := make([]MapPoint, 0, len(records))
	skipped := 0
	for _, r := range records {
		g, err := ParseGeoLocation(r.GeoLocation)
		if err != nil {
			skipped++
			continue
		}
		points = append(points, MapPoint{
			ID:         r.Key(),
			Lat:        g.Lat,
			Lng:        g.Lng,
			Label:      r.Label(),
			Color:      binner.Hex(r.Value()),
			Value:      r.Value(),
			Population: r.PopulationCount,
		})
	}
	return points, skipped
}

// ToTableRows converts filtered records into table rows sorted by value,
// highest first. The sort is stable, so records with equal values keep
// their input order. Coordinates play no part here: rows that were skipped
// on the map still show up in the table.
func ToTableRows(records []Record) []TableRow {
	rows := make([]TableRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, TableRow{
			City:       r.CityName,
			State:      r.StateAbbr,
			Value:      r.Value(),
			Population: r.PopulationCount,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Value > rows[j].Value })
	return rows
}

// BoundsOf computes the bounding viewport of a marker set, nil when there
// are no markers so the frontend keeps its current view.
func BoundsOf(points []MapPoint) *Viewport {
	if len(points) == 0 {
		return nil
	}
	rect := s2.EmptyRect()
	for _, p := range points {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lng))
	}
	center := rect.Center()
	return &Viewport{
		South:     rect.Lo().Lat.Degrees(),
		West:      rect.Lo().Lng.Degrees(),
		North:     rect.Hi().Lat.Degrees(),
		East:      rect.Hi().Lng.Degrees(),
		CenterLat: center.Lat.Degrees(),
		CenterLng: center.Lng.Degrees(),
	}
}

// NearestPoint returns the marker closest to (lat, lng) by great-circle
// distance, plus the distance in kilometers. ok is false when the marker
// set is empty.
func NearestPoint(points []MapPoint, lat, lng float64) (nearest MapPoint, distanceKm float64, ok bool) {
	if len(points) == 0 {
		return MapPoint{}, 0, false
	}
	from := s2.LatLngFromDegrees(lat, lng)
	best := 0
	bestAngle := s1.InfAngle()
	for i, p := range points {
		d := from.Distance(s2.LatLngFromDegrees(p.Lat, p.Lng))
		if d < bestAngle {
			best = i
			bestAngle = d
		}
	}
	return points[best], bestAngle.Radians() * earthRadiusKm, true
}
