package model

// Category names a scoring dimension.
type Category string

const (
	CategoryPrice        Category = "price"
	CategoryCommute      Category = "commute"
	CategoryPropertyType Category = "property_type"
	CategoryBedrooms     Category = "bedrooms"
	CategoryOutdoorSpace Category = "outdoor_space"
	CategorySchools      Category = "schools"
	CategoryGrammarBonus Category = "grammar_bonus"
)

// Categories lists every scoring category in display order.
var Categories = []Category{
	CategoryPrice,
	CategoryCommute,
	CategoryPropertyType,
	CategoryBedrooms,
	CategoryOutdoorSpace,
	CategorySchools,
	CategoryGrammarBonus,
}

// ScoredProperty is the score of one PropertyRecord under one settings
// version. It is derived data: recompute it whenever settings change.
type ScoredProperty struct {
	PropertyID string `json:"property_id"`

	// CategoryScores holds raw points per category, bounded by each
	// category's table maximum.
	CategoryScores map[Category]float64 `json:"category_scores"`

	// Contributions holds each category's weighted share of the composite.
	Contributions map[Category]float64 `json:"contributions"`

	CompositeScore  float64 `json:"composite_score"`
	Band            string  `json:"band"`
	Flags           Flags   `json:"flags"`
	SettingsVersion uint64  `json:"settings_version"`
}
