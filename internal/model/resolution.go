package model

// Resolution is the outcome of a location lookup for one property against
// a reference postcode. A nil field means the dimension is unresolved.
type Resolution struct {
	CommuteMinutes          *float64 `json:"commute_minutes"`
	GrammarSchoolDistanceKM *float64 `json:"grammar_school_distance_km"`
	Latitude                *float64 `json:"latitude,omitempty"`
	Longitude               *float64 `json:"longitude,omitempty"`
	Geohash                 string   `json:"geohash,omitempty"`
	Source                  string   `json:"source"`
}

// Resolved reports whether the commute dimension was resolved.
func (r *Resolution) Resolved() bool {
	return r != nil && r.CommuteMinutes != nil
}
