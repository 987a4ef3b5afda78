// Package model defines the property records, raw inputs and scored results
// shared across the analyzer.
package model

// PropertyRecord is one normalized listing. Every record reachable by the
// scorer has passed normalization: Price and Bedrooms are non-negative and
// all enumerations hold a known variant.
type PropertyRecord struct {
	ID           string       `json:"id"`
	SourceURL    string       `json:"source_url,omitempty"`
	Address      string       `json:"address"`
	Postcode     string       `json:"postcode,omitempty"`
	Price        int64        `json:"price"`
	PropertyType PropertyType `json:"property_type"`
	Bedrooms     int          `json:"bedrooms"`
	Bathrooms    *float64     `json:"bathrooms,omitempty"`
	SquareFeet   *float64     `json:"square_feet,omitempty"`
	OutdoorSpace OutdoorSpace `json:"outdoor_space"`
	SchoolRating SchoolRating `json:"school_rating"`
	Borough      string       `json:"borough,omitempty"`

	// Nil means unresolved, which is distinct from a resolved zero.
	GrammarSchoolDistanceKM *float64 `json:"grammar_school_distance_km,omitempty"`
	CommuteMinutes          *float64 `json:"commute_minutes,omitempty"`
}

// PricePerSqFt returns price divided by floor area, or 0 when the area is unknown.
func (p PropertyRecord) PricePerSqFt() float64 {
	if p.SquareFeet == nil || *p.SquareFeet <= 0 {
		return 0
	}
	return float64(p.Price) / *p.SquareFeet
}

// WithResolution returns a copy of p with any unset commute or grammar school
// distance filled from res. Values already present on p win.
func (p PropertyRecord) WithResolution(res *Resolution) PropertyRecord {
	if res == nil {
		return p
	}
	out := p
	if out.CommuteMinutes == nil && res.CommuteMinutes != nil {
		v := *res.CommuteMinutes
		out.CommuteMinutes = &v
	}
	if out.GrammarSchoolDistanceKM == nil && res.GrammarSchoolDistanceKM != nil {
		v := *res.GrammarSchoolDistanceKM
		out.GrammarSchoolDistanceKM = &v
	}
	return out
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }
