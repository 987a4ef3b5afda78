package model

import "github.com/rotisserie/eris"

// PropertyType classifies a listing's building form.
type PropertyType string

const (
	PropertyTypeHouse      PropertyType = "House"
	PropertyTypeMaisonette PropertyType = "Maisonette"
	PropertyTypeFlat       PropertyType = "Flat"
	PropertyTypeStudio     PropertyType = "Studio"
	PropertyTypeOther      PropertyType = "Other"
)

// PropertyTypes lists every PropertyType variant.
var PropertyTypes = []PropertyType{
	PropertyTypeHouse, PropertyTypeMaisonette, PropertyTypeFlat, PropertyTypeStudio, PropertyTypeOther,
}

// IsValid reports whether t is a known variant.
func (t PropertyType) IsValid() bool {
	for _, v := range PropertyTypes {
		if t == v {
			return true
		}
	}
	return false
}

func (t PropertyType) String() string { return string(t) }

func (t PropertyType) MarshalText() ([]byte, error) { return []byte(t), nil }

func (t *PropertyType) UnmarshalText(b []byte) error {
	v := PropertyType(b)
	if !v.IsValid() {
		return eris.Errorf("model: unknown property type %q", string(b))
	}
	*t = v
	return nil
}

// OutdoorSpace classifies private outdoor space.
type OutdoorSpace string

const (
	OutdoorGarden  OutdoorSpace = "Garden"
	OutdoorTerrace OutdoorSpace = "Terrace"
	OutdoorBalcony OutdoorSpace = "Balcony"
	OutdoorNone    OutdoorSpace = "None"
)

// OutdoorSpaces lists every OutdoorSpace variant.
var OutdoorSpaces = []OutdoorSpace{OutdoorGarden, OutdoorTerrace, OutdoorBalcony, OutdoorNone}

// IsValid reports whether o is a known variant.
func (o OutdoorSpace) IsValid() bool {
	for _, v := range OutdoorSpaces {
		if o == v {
			return true
		}
	}
	return false
}

func (o OutdoorSpace) String() string { return string(o) }

func (o OutdoorSpace) MarshalText() ([]byte, error) { return []byte(o), nil }

func (o *OutdoorSpace) UnmarshalText(b []byte) error {
	v := OutdoorSpace(b)
	if !v.IsValid() {
		return eris.Errorf("model: unknown outdoor space %q", string(b))
	}
	*o = v
	return nil
}

// SchoolRating is the Ofsted rating of the nearest school.
type SchoolRating string

const (
	SchoolOutstanding         SchoolRating = "Outstanding"
	SchoolGood                SchoolRating = "Good"
	SchoolRequiresImprovement SchoolRating = "Requires Improvement"
	SchoolInadequate          SchoolRating = "Inadequate"
	SchoolUnknown             SchoolRating = "Unknown"
)

// SchoolRatings lists every SchoolRating variant.
var SchoolRatings = []SchoolRating{
	SchoolOutstanding, SchoolGood, SchoolRequiresImprovement, SchoolInadequate, SchoolUnknown,
}

// IsValid reports whether r is a known variant.
func (r SchoolRating) IsValid() bool {
	for _, v := range SchoolRatings {
		if r == v {
			return true
		}
	}
	return false
}

func (r SchoolRating) String() string { return string(r) }

func (r SchoolRating) MarshalText() ([]byte, error) { return []byte(r), nil }

func (r *SchoolRating) UnmarshalText(b []byte) error {
	v := SchoolRating(b)
	if !v.IsValid() {
		return eris.Errorf("model: unknown school rating %q", string(b))
	}
	*r = v
	return nil
}

// Flag is a derived marker attached to a scored property.
type Flag string

const (
	FlagPriority          Flag = "priority"
	FlagWithinBudget      Flag = "within_budget"
	FlagAcceptableCommute Flag = "acceptable_commute"
)

// Flags is a small ordered set of Flag values.
type Flags []Flag

// Has reports whether f is present.
func (fs Flags) Has(f Flag) bool {
	for _, v := range fs {
		if v == f {
			return true
		}
	}
	return false
}
