// Package ingest reads raw listings from spreadsheets, CSV and JSON files,
// and imports them from listing web pages.
package ingest

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/property-cli/internal/model"
)

// columnAliases maps normalized header names onto RawProperty fields.
var columnAliases = map[string]string{
	"id":                         "id",
	"property_id":                "id",
	"url":                        "source_url",
	"source_url":                 "source_url",
	"listing_url":                "source_url",
	"address":                    "address",
	"postcode":                   "postcode",
	"post_code":                  "postcode",
	"price":                      "price",
	"asking_price":               "price",
	"property_type":              "property_type",
	"type":                       "property_type",
	"bedrooms":                   "bedrooms",
	"beds":                       "bedrooms",
	"bathrooms":                  "bathrooms",
	"baths":                      "bathrooms",
	"square_feet":                "square_feet",
	"sq_ft":                      "square_feet",
	"sqft":                       "square_feet",
	"outdoor_space":              "outdoor_space",
	"outdoor":                    "outdoor_space",
	"school_rating":              "school_rating",
	"nearest_school_ofsted":      "school_rating",
	"ofsted":                     "school_rating",
	"grammar_school_distance":    "grammar_school_distance_km",
	"grammar_school_distance_km": "grammar_school_distance_km",
	"commute_time":               "commute_minutes",
	"commute_minutes":            "commute_minutes",
	"commute":                    "commute_minutes",
	"borough":                    "borough",
}

// requiredColumns must be present in every tabular import.
var requiredColumns = []string{"address", "property_type", "price"}

func headerKey(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer(" ", "_", "-", "_", "(", "", ")", "").Replace(h)
}

// mapHeader returns the field bound to each column, "" for ignored columns.
func mapHeader(header []string) ([]string, error) {
	fields := make([]string, len(header))
	seen := map[string]bool{}
	for i, h := range header {
		f := columnAliases[headerKey(h)]
		if f == "" || seen[f] {
			continue
		}
		fields[i] = f
		seen[f] = true
	}

	var missing []string
	for _, req := range requiredColumns {
		if !seen[req] {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, eris.Errorf("ingest: missing required columns: %s", strings.Join(missing, ", "))
	}
	return fields, nil
}

// FromRows converts a header row plus data rows into raw records. Row
// numbers count the header as row 1. Blank rows are skipped.
func FromRows(rows [][]string) ([]model.RawProperty, error) {
	if len(rows) == 0 {
		return nil, eris.New("ingest: no header row")
	}
	fields, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	out := []model.RawProperty{}
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		raw := model.RawProperty{Row: i + 2}
		for j, cell := range row {
			if j >= len(fields) || fields[j] == "" || strings.TrimSpace(cell) == "" {
				continue
			}
			setField(&raw, fields[j], cell)
		}
		out = append(out, raw)
	}
	return out, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func setField(raw *model.RawProperty, field, value string) {
	v := model.Raw(value)
	switch field {
	case "id":
		raw.ID = v
	case "source_url":
		raw.SourceURL = v
	case "address":
		raw.Address = v
	case "postcode":
		raw.Postcode = v
	case "price":
		raw.Price = v
	case "property_type":
		raw.PropertyType = v
	case "bedrooms":
		raw.Bedrooms = v
	case "bathrooms":
		raw.Bathrooms = v
	case "square_feet":
		raw.SquareFeet = v
	case "outdoor_space":
		raw.OutdoorSpace = v
	case "school_rating":
		raw.SchoolRating = v
	case "grammar_school_distance_km":
		raw.GrammarSchoolDistanceKM = v
	case "commute_minutes":
		raw.CommuteMinutes = v
	case "borough":
		raw.Borough = v
	}
}
