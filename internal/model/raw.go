package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// RawValue is a loosely typed input value: either absent, or the text the
// source supplied. JSON strings, numbers and null all decode into it.
type RawValue struct {
	Text string
	Set  bool
}

// Raw wraps s as a present RawValue.
func Raw(s string) RawValue { return RawValue{Text: s, Set: true} }

// Missing reports whether the value is absent or blank.
func (v RawValue) Missing() bool {
	return !v.Set || strings.TrimSpace(v.Text) == ""
}

// String returns the trimmed text, or "" when absent.
func (v RawValue) String() string {
	if !v.Set {
		return ""
	}
	return strings.TrimSpace(v.Text)
}

func (v RawValue) MarshalJSON() ([]byte, error) {
	if !v.Set {
		return []byte("null"), nil
	}
	return json.Marshal(v.Text)
}

func (v *RawValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*v = RawValue{}
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return eris.Wrap(err, "model: decode raw string")
		}
		*v = Raw(s)
		return nil
	case b[0] == '{' || b[0] == '[':
		return eris.New("model: raw value must be a string, number or boolean")
	default:
		// Numbers and booleans keep their literal text.
		*v = Raw(string(b))
		return nil
	}
}

// RawProperty is an unvalidated listing as supplied by manual entry, URL
// import or batch import. The normalizer turns it into a PropertyRecord.
type RawProperty struct {
	ID                      RawValue `json:"id"`
	SourceURL               RawValue `json:"source_url"`
	Address                 RawValue `json:"address"`
	Postcode                RawValue `json:"postcode"`
	Price                   RawValue `json:"price"`
	PropertyType            RawValue `json:"property_type"`
	Bedrooms                RawValue `json:"bedrooms"`
	Bathrooms               RawValue `json:"bathrooms"`
	SquareFeet              RawValue `json:"square_feet"`
	OutdoorSpace            RawValue `json:"outdoor_space"`
	SchoolRating            RawValue `json:"school_rating"`
	GrammarSchoolDistanceKM RawValue `json:"grammar_school_distance_km"`
	CommuteMinutes          RawValue `json:"commute_minutes"`
	Borough                 RawValue `json:"borough"`

	// Row is the 1-based source row for batch imports, 0 otherwise.
	Row int `json:"-"`
}
