package domain

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxFuzzyDistance is the edit-distance tolerance for city name search.
// Two edits covers the common cases (dropped letter, transposition) without
// matching unrelated short names.
const maxFuzzyDistance = 2

// CityMatch is one search hit, carrying the coordinate so the frontend can
// fly the map to it directly.
type CityMatch struct {
	City      string  `json:"city"`
	State     string  `json:"state"`
	StateName string  `json:"state_name,omitempty"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

// SearchCities finds distinct cities whose name matches the query.
// Case-insensitive substring matches rank first, then names within
// maxFuzzyDistance edits, nearer first. Cities without a parseable
// coordinate are omitted because a hit exists to be flown to. Ties sort by
// city name so results are deterministic.
func SearchCities(records []Record, query string, limit int) []CityMatch {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 {
		return nil
	}

	type candidate struct {
		match CityMatch
		rank  int // 0 for substring hits, edit distance otherwise
	}
	var candidates []candidate
	seen := make(map[string]bool)

	for _, r := range records {
		key := r.Key()
		if seen[key] {
			continue
		}
		name := strings.ToLower(r.CityName)

		rank := -1
		if strings.Contains(name, query) {
			rank = 0
		} else if d := levenshtein.ComputeDistance(name, query); d <= maxFuzzyDistance {
			rank = d
		}
		if rank < 0 {
			continue
		}

		g, err := ParseGeoLocation(r.GeoLocation)
		if err != nil {
			continue
		}
		seen[key] = true
		candidates = append(candidates, candidate{
			match: CityMatch{
				City:      r.CityName,
				State:     r.StateAbbr,
				StateName: StateName(r.StateAbbr),
				Lat:       g.Lat,
				Lng:       g.Lng,
			},
			rank: rank,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].rank != candidates[j].rank {
			return candidates[i].rank < candidates[j].rank
		}
		return candidates[i].match.City < candidates[j].match.City
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]CityMatch, len(candidates))
	for i, c := range candidates {
		out[i] = c.match
	}
	return out
}
