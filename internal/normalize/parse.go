package normalize

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/property-cli/internal/model"
)

// Upper bounds on parsed integers. Larger values would overflow on conversion.
const (
	maxPrice    = 1e15
	maxBedrooms = 1000
)

var (
	errNotNumber   = errors.New("must be a number")
	errNegative    = errors.New("must be non-negative")
	errNotWhole    = errors.New("must be a whole number")
	errTooLarge    = errors.New("is too large")
	bedroomsTextRe = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*-?\s*(?:bed(?:room)?s?)?$`)
)

// propertyTypeSynonyms maps lower-case raw labels onto variants.
var propertyTypeSynonyms = map[string]model.PropertyType{
	"house":               model.PropertyTypeHouse,
	"detached":            model.PropertyTypeHouse,
	"detached house":      model.PropertyTypeHouse,
	"semi-detached":       model.PropertyTypeHouse,
	"semi-detached house": model.PropertyTypeHouse,
	"semi":                model.PropertyTypeHouse,
	"terraced":            model.PropertyTypeHouse,
	"terraced house":      model.PropertyTypeHouse,
	"end of terrace":      model.PropertyTypeHouse,
	"townhouse":           model.PropertyTypeHouse,
	"bungalow":            model.PropertyTypeHouse,
	"cottage":             model.PropertyTypeHouse,
	"maisonette":          model.PropertyTypeMaisonette,
	"duplex":              model.PropertyTypeMaisonette,
	"flat":                model.PropertyTypeFlat,
	"apartment":           model.PropertyTypeFlat,
	"apt":                 model.PropertyTypeFlat,
	"condo":               model.PropertyTypeFlat,
	"penthouse":           model.PropertyTypeFlat,
	"studio":              model.PropertyTypeStudio,
	"studio flat":         model.PropertyTypeStudio,
	"studio apartment":    model.PropertyTypeStudio,
	"other":               model.PropertyTypeOther,
}

// propertyTypeKeywords is consulted in order when no synonym matches
// exactly, so "3 bed semi-detached house" still classifies as a House.
var propertyTypeKeywords = []struct {
	keyword string
	t       model.PropertyType
}{
	{"studio", model.PropertyTypeStudio},
	{"maisonette", model.PropertyTypeMaisonette},
	{"duplex", model.PropertyTypeMaisonette},
	{"penthouse", model.PropertyTypeFlat},
	{"apartment", model.PropertyTypeFlat},
	{"flat", model.PropertyTypeFlat},
	{"house", model.PropertyTypeHouse},
	{"bungalow", model.PropertyTypeHouse},
	{"cottage", model.PropertyTypeHouse},
	{"terrace", model.PropertyTypeHouse},
	{"detached", model.PropertyTypeHouse},
}

// ParsePropertyType classifies a raw label case-insensitively. ok is false
// when nothing matched and the label fell through to Other.
func ParsePropertyType(s string) (t model.PropertyType, ok bool) {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	if v, found := propertyTypeSynonyms[key]; found {
		return v, true
	}
	for _, kw := range propertyTypeKeywords {
		if strings.Contains(key, kw.keyword) {
			return kw.t, true
		}
	}
	return model.PropertyTypeOther, false
}

// ParseOutdoorSpace classifies a raw outdoor-space label. Empty input is
// None; ok is false when a non-empty label was not recognised.
func ParseOutdoorSpace(s string) (o model.OutdoorSpace, ok bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch {
	case key == "", key == "none", key == "no", key == "n/a", strings.HasPrefix(key, "no "):
		return model.OutdoorNone, true
	case strings.Contains(key, "terrace"):
		return model.OutdoorTerrace, true
	case strings.Contains(key, "garden"), strings.Contains(key, "yard"),
		strings.Contains(key, "patio"), strings.Contains(key, "courtyard"), strings.Contains(key, "lawn"):
		return model.OutdoorGarden, true
	case strings.Contains(key, "balcony"):
		return model.OutdoorBalcony, true
	}
	return model.OutdoorNone, false
}

// ParseSchoolRating classifies an Ofsted rating, accepting the label or the
// numeric grade 1-4. ok is false when a non-empty value was not recognised.
func ParseSchoolRating(s string) (r model.SchoolRating, ok bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch {
	case key == "", key == "unknown":
		return model.SchoolUnknown, true
	case key == "1", strings.Contains(key, "outstanding"):
		return model.SchoolOutstanding, true
	case key == "3", strings.Contains(key, "requires improvement"), strings.Contains(key, "satisfactory"):
		return model.SchoolRequiresImprovement, true
	case key == "4", strings.Contains(key, "inadequate"):
		return model.SchoolInadequate, true
	case key == "2", strings.Contains(key, "good"):
		return model.SchoolGood, true
	}
	return model.SchoolUnknown, false
}

// ParsePrice reads a GBP amount such as "£425,000" and rounds it to whole pounds.
func ParsePrice(s string) (int64, error) {
	v, err := parseNumber(strings.NewReplacer("£", "", "GBP", "", "gbp", "").Replace(s))
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errNegative
	}
	if v > maxPrice {
		return 0, errTooLarge
	}
	return int64(math.Round(v)), nil
}

// ParseBedrooms reads a bedroom count such as "3", "3 bed" or "studio".
func ParseBedrooms(s string) (int, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "studio" {
		return 0, nil
	}
	m := bedroomsTextRe.FindStringSubmatch(key)
	if m == nil {
		return 0, errNotNumber
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, errNotNumber
	}
	if v < 0 {
		return 0, errNegative
	}
	if v > maxBedrooms {
		return 0, errTooLarge
	}
	if v != math.Trunc(v) {
		return 0, errNotWhole
	}
	return int(v), nil
}

// parseMeasure reads a non-negative decimal, ignoring the given unit suffixes.
func parseMeasure(s string, units ...string) (float64, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	for _, u := range units {
		if strings.HasSuffix(text, u) {
			text = strings.TrimSpace(strings.TrimSuffix(text, u))
			break
		}
	}
	v, err := parseNumber(text)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errNegative
	}
	return v, nil
}

func parseNumber(s string) (float64, error) {
	text := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	text = strings.ReplaceAll(text, " ", "")
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotNumber
	}
	return v, nil
}
