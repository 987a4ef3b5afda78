// Package normalize turns loosely typed listing input into validated
// PropertyRecords. It performs no I/O and never logs.
package normalize

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sells-group/property-cli/internal/model"
)

// Plausibility thresholds. Values outside them produce warnings only.
const (
	minPlausiblePrice    = 50_000
	maxPlausiblePrice    = 50_000_000
	maxPlausibleBedrooms = 10
	minPlausibleSqFt     = 100
	maxPlausibleSqFt     = 10_000
)

// Result is a successfully normalized record plus any non-fatal findings.
type Result struct {
	Record   model.PropertyRecord `json:"record"`
	Warnings []Warning            `json:"warnings,omitempty"`
}

// Normalizer validates raw listings. The zero value is not usable; build one
// with New.
type Normalizer struct {
	newID func() string
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithIDFunc sets the generator used for records that arrive without an id.
func WithIDFunc(fn func() string) Option {
	return func(n *Normalizer) { n.newID = fn }
}

// New creates a Normalizer. Records without an id receive a random UUID.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{newID: uuid.NewString}
	for _, o := range opts {
		o(n)
	}
	return n
}

var defaultNormalizer = New()

// Normalize validates raw with the default Normalizer.
func Normalize(raw model.RawProperty) (*Result, error) {
	return defaultNormalizer.Normalize(raw)
}

// Normalize validates raw. Every offending field is reported in a single
// *ValidationError; the returned Result is nil in that case.
func (n *Normalizer) Normalize(raw model.RawProperty) (*Result, error) {
	verr := &ValidationError{ID: raw.ID.String(), Row: raw.Row}
	var warns []Warning
	warn := func(w *Warning) {
		if w != nil {
			warns = append(warns, *w)
		}
	}

	rec := model.PropertyRecord{
		ID:        raw.ID.String(),
		SourceURL: raw.SourceURL.String(),
		Address:   collapse(raw.Address.String()),
	}
	if rec.ID == "" {
		rec.ID = n.newID()
	}

	if rec.Address == "" {
		verr.add("address", "is required")
	}

	if raw.Price.Missing() {
		verr.add("price", "is required")
	} else if p, err := ParsePrice(raw.Price.String()); err != nil {
		verr.add("price", err.Error())
	} else {
		rec.Price = p
		if p < minPlausiblePrice || p > maxPlausiblePrice {
			warn(&Warning{Field: "price", Message: fmt.Sprintf("£%d looks implausible for a London listing", p)})
		}
	}

	if raw.PropertyType.Missing() {
		verr.add("property_type", "is required")
	} else {
		t, ok := ParsePropertyType(raw.PropertyType.String())
		rec.PropertyType = t
		if !ok {
			warn(&Warning{Field: "property_type", Message: fmt.Sprintf("%q not recognised, classified as Other", raw.PropertyType.String())})
		}
	}

	if raw.Bedrooms.Missing() {
		warn(&Warning{Field: "bedrooms", Message: "missing, assumed 0"})
	} else if b, err := ParseBedrooms(raw.Bedrooms.String()); err != nil {
		verr.add("bedrooms", err.Error())
	} else {
		rec.Bedrooms = b
		if b > maxPlausibleBedrooms {
			warn(&Warning{Field: "bedrooms", Message: fmt.Sprintf("%d bedrooms looks implausible", b)})
		}
	}

	rec.Bathrooms = optionalMeasure(verr, "bathrooms", raw.Bathrooms)
	rec.SquareFeet = optionalMeasure(verr, "square_feet", raw.SquareFeet, "sq ft", "sqft", "sq. ft.", "ft²")
	if rec.SquareFeet != nil && (*rec.SquareFeet < minPlausibleSqFt || *rec.SquareFeet > maxPlausibleSqFt) {
		warn(&Warning{Field: "square_feet", Message: fmt.Sprintf("%g sq ft looks implausible", *rec.SquareFeet)})
	}
	rec.GrammarSchoolDistanceKM = optionalMeasure(verr, "grammar_school_distance_km", raw.GrammarSchoolDistanceKM, "km")
	rec.CommuteMinutes = optionalMeasure(verr, "commute_minutes", raw.CommuteMinutes, "minutes", "mins", "min")

	outdoor, ok := ParseOutdoorSpace(raw.OutdoorSpace.String())
	rec.OutdoorSpace = outdoor
	if !ok {
		warn(&Warning{Field: "outdoor_space", Message: fmt.Sprintf("%q not recognised, classified as None", raw.OutdoorSpace.String())})
	}

	rating, ok := ParseSchoolRating(raw.SchoolRating.String())
	rec.SchoolRating = rating
	if !ok {
		warn(&Warning{Field: "school_rating", Message: fmt.Sprintf("%q not recognised, classified as Unknown", raw.SchoolRating.String())})
	}

	switch {
	case !raw.Postcode.Missing():
		pc, w := CheckPostcode(raw.Postcode.String())
		rec.Postcode = pc
		warn(w)
	default:
		if pc, ok := ExtractPostcode(rec.Address); ok {
			rec.Postcode = pc
			if !IsLondonPostcode(pc) {
				warn(&Warning{Field: "postcode", Message: "outside London postal areas"})
			}
		} else {
			warn(&Warning{Field: "postcode", Message: "missing, commute and borough lookups unavailable"})
		}
	}

	borough, w := Borough(raw.Borough.String())
	rec.Borough = borough
	warn(w)

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return &Result{Record: rec, Warnings: warns}, nil
}

func optionalMeasure(verr *ValidationError, field string, v model.RawValue, units ...string) *float64 {
	if v.Missing() {
		return nil
	}
	f, err := parseMeasure(v.String(), units...)
	if err != nil {
		verr.add(field, err.Error())
		return nil
	}
	return &f
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
