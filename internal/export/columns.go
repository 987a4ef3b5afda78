// Package export writes ranked results as CSV or as an Excel workbook.
package export

import (
	"strconv"
	"strings"

	"github.com/sells-group/property-cli/internal/model"
)

// baseColumns precede one column per scoring category.
var baseColumns = []string{
	"Rank",
	"Property ID",
	"Address",
	"Postcode",
	"Borough",
	"Property Type",
	"Bedrooms",
	"Bathrooms",
	"Square Feet",
	"Price",
	"Price per Sq Ft",
	"Outdoor Space",
	"School Rating",
	"Commute Minutes",
	"Grammar School km",
}

var tailColumns = []string{
	"Composite Score",
	"Band",
	"Flags",
	"Settings Version",
	"Source URL",
}

// Columns returns the header of the Properties sheet and CSV export.
func Columns() []string {
	cols := append([]string{}, baseColumns...)
	for _, cat := range model.Categories {
		cols = append(cols, categoryLabel(cat)+" Points")
	}
	return append(cols, tailColumns...)
}

func categoryLabel(cat model.Category) string {
	words := strings.Split(string(cat), "_")
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// row is one exported property. Unresolved and unknown values are blank.
func row(rank int, sp model.ScoredProperty, rec model.PropertyRecord) []string {
	out := []string{
		strconv.Itoa(rank),
		rec.ID,
		rec.Address,
		rec.Postcode,
		rec.Borough,
		rec.PropertyType.String(),
		strconv.Itoa(rec.Bedrooms),
		optFloat(rec.Bathrooms),
		optFloat(rec.SquareFeet),
		strconv.FormatInt(rec.Price, 10),
		"",
		rec.OutdoorSpace.String(),
		rec.SchoolRating.String(),
		optFloat(rec.CommuteMinutes),
		optFloat(rec.GrammarSchoolDistanceKM),
	}
	if v := rec.PricePerSqFt(); v > 0 {
		out[10] = formatFloat(v, 2)
	}
	for _, cat := range model.Categories {
		out = append(out, formatFloat(sp.CategoryScores[cat], 2))
	}
	flags := make([]string, len(sp.Flags))
	for i, f := range sp.Flags {
		flags[i] = string(f)
	}
	return append(out,
		formatFloat(sp.CompositeScore, 2),
		sp.Band,
		strings.Join(flags, ";"),
		strconv.FormatUint(sp.SettingsVersion, 10),
		rec.SourceURL,
	)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatFloat(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

// joined pairs each ranked entry with its record. Entries without a record
// are dropped.
func joined(ranked []model.ScoredProperty, records []model.PropertyRecord) ([]model.ScoredProperty, []model.PropertyRecord) {
	byID := make(map[string]model.PropertyRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	sps := make([]model.ScoredProperty, 0, len(ranked))
	recs := make([]model.PropertyRecord, 0, len(ranked))
	for _, sp := range ranked {
		if rec, ok := byID[sp.PropertyID]; ok {
			sps = append(sps, sp)
			recs = append(recs, rec)
		}
	}
	return sps, recs
}
