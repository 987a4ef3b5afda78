package scorer

import (
	"math"

	"github.com/sells-group/property-cli/internal/model"
)

// commuteFullMarks is the commute at or below which full points are awarded.
const commuteFullMarks = 30.0

// Score computes the category points and composite score of rec under s.
// It is pure: the result depends only on its arguments.
//
// Each category contributes points/max × 100 × weight share, so the
// composite is always in [0, 100] and the default weights reproduce the raw
// point table exactly.
func Score(rec model.PropertyRecord, s *Settings) model.ScoredProperty {
	cfg := s.cfg
	points := map[model.Category]float64{
		model.CategoryPrice:        PricePoints(rec.Price, cfg.BudgetMin, cfg.BudgetMax),
		model.CategoryCommute:      CommutePoints(rec.CommuteMinutes, cfg.MaxCommuteMinutes),
		model.CategoryPropertyType: PropertyTypePoints(rec.PropertyType),
		model.CategoryBedrooms:     BedroomPoints(rec.Bedrooms, cfg.MinBedrooms),
		model.CategoryOutdoorSpace: OutdoorSpacePoints(rec.OutdoorSpace),
		model.CategorySchools:      SchoolPoints(rec.SchoolRating),
		model.CategoryGrammarBonus: GrammarBonusPoints(rec.GrammarSchoolDistanceKM),
	}

	contributions := make(map[model.Category]float64, len(points))
	var total float64
	for _, cat := range model.Categories {
		c := points[cat] / MaxPoints[cat] * 100 * s.Share(cat)
		contributions[cat] = c
		total += c
	}
	total = math.Max(0, math.Min(100, total))
	composite := math.Round(total*100) / 100 // 2 decimal places

	return model.ScoredProperty{
		PropertyID:      rec.ID,
		CategoryScores:  points,
		Contributions:   contributions,
		CompositeScore:  composite,
		Band:            Band(composite),
		Flags:           Flags(rec, s),
		SettingsVersion: s.version,
	}
}

// ScoreAll scores every record under the same settings, in input order.
func ScoreAll(recs []model.PropertyRecord, s *Settings) []model.ScoredProperty {
	out := make([]model.ScoredProperty, len(recs))
	for i, r := range recs {
		out[i] = Score(r, s)
	}
	return out
}

// PricePoints returns 0-20. At or under budgetMin scores 20, at or over
// budgetMax scores 0, linear in between. A zero-width budget awards 20 to
// any price within it.
func PricePoints(price, budgetMin, budgetMax int64) float64 {
	const maxPts = 20.0
	if budgetMin >= budgetMax {
		if price <= budgetMax {
			return maxPts
		}
		return 0
	}
	switch {
	case price <= budgetMin:
		return maxPts
	case price >= budgetMax:
		return 0
	}
	return maxPts * float64(budgetMax-price) / float64(budgetMax-budgetMin)
}

// CommutePoints returns 0-20. An unresolved commute scores 0.
func CommutePoints(minutes *float64, maxCommute float64) float64 {
	const maxPts = 20.0
	if minutes == nil {
		return 0
	}
	m := *minutes
	if m <= commuteFullMarks {
		return maxPts
	}
	if maxCommute <= commuteFullMarks || m >= maxCommute {
		return 0
	}
	return maxPts * (maxCommute - m) / (maxCommute - commuteFullMarks)
}

// PropertyTypePoints returns 0-15.
func PropertyTypePoints(t model.PropertyType) float64 {
	switch t {
	case model.PropertyTypeHouse:
		return 15
	case model.PropertyTypeMaisonette:
		return 12
	case model.PropertyTypeFlat:
		return 8
	}
	return 5
}

// BedroomPoints returns 0-15. Below the minimum the score grows by 3 per
// bedroom but stays under the 8 awarded for exactly the minimum.
func BedroomPoints(bedrooms, minBedrooms int) float64 {
	switch {
	case bedrooms >= minBedrooms+2:
		return 15
	case bedrooms == minBedrooms+1:
		return 12
	case bedrooms == minBedrooms:
		return 8
	}
	return math.Min(3*float64(max(bedrooms, 0)), 7)
}

// OutdoorSpacePoints returns 0-10. Garden and Terrace score the same.
func OutdoorSpacePoints(o model.OutdoorSpace) float64 {
	switch o {
	case model.OutdoorGarden, model.OutdoorTerrace:
		return 10
	case model.OutdoorBalcony:
		return 6
	}
	return 2
}

// SchoolPoints returns 0-10.
func SchoolPoints(r model.SchoolRating) float64 {
	switch r {
	case model.SchoolOutstanding:
		return 10
	case model.SchoolGood:
		return 7
	case model.SchoolRequiresImprovement:
		return 4
	case model.SchoolInadequate:
		return 2
	}
	return 0
}

// GrammarBonusPoints returns 0-10. An unresolved distance scores 0.
func GrammarBonusPoints(km *float64) float64 {
	if km == nil {
		return 0
	}
	switch d := *km; {
	case d <= 2:
		return 10
	case d <= 5:
		return 6
	case d <= 10:
		return 3
	}
	return 0
}
