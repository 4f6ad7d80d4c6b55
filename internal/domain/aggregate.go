package domain

import "sort"

// Place is one deduplicated entry on the unique-places report.
type Place struct {
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// AggregatePlaces reduces resolved locations to a sorted, deduplicated list
// of places. Records with no city are dropped; duplicates collapse on the
// full (city, state, country) triple; the result is ordered by country, then
// state, then city, with an absent state sorting after any present value.
func AggregatePlaces(locations []Location) []Place {
	seen := make(map[Place]struct{}, len(locations))
	places := make([]Place, 0, len(locations))

	for _, loc := range locations {
		if loc.City == "" {
			continue
		}
		p := Place{City: loc.City, State: loc.State, Country: loc.Country}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		places = append(places, p)
	}

	sort.Slice(places, func(i, j int) bool {
		a, b := places[i], places[j]
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		if a.State != b.State {
			// An absent state sorts last within its country.
			if a.State == "" {
				return false
			}
			if b.State == "" {
				return true
			}
			return a.State < b.State
		}
		return a.City < b.City
	})

	return places
}
