// Package scorer implements weighted property scoring against a session's
// reference settings.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/sells-group/property-cli/internal/config"
	"github.com/sells-group/property-cli/internal/model"
	"github.com/sells-group/property-cli/internal/normalize"
)

// MaxPoints is the raw point ceiling of each category. Together they form
// the default 100-point distribution.
var MaxPoints = map[model.Category]float64{
	model.CategoryPrice:        20,
	model.CategoryCommute:      20,
	model.CategoryPropertyType: 15,
	model.CategoryBedrooms:     15,
	model.CategoryOutdoorSpace: 10,
	model.CategorySchools:      10,
	model.CategoryGrammarBonus: 10,
}

// MaxWeights bounds each category weight from above. The lower bound is 0.
var MaxWeights = map[model.Category]float64{
	model.CategoryPrice:        0.40,
	model.CategoryCommute:      0.40,
	model.CategoryPropertyType: 0.25,
	model.CategoryBedrooms:     0.25,
	model.CategoryOutdoorSpace: 0.15,
	model.CategorySchools:      0.15,
	model.CategoryGrammarBonus: 0.15,
}

// DefaultConfig returns the default scoring settings. Weights sum to 1.
func DefaultConfig() config.ScoringConfig {
	return config.DefaultScoring()
}

// Weights maps a WeightsConfig onto categories.
func Weights(w config.WeightsConfig) map[model.Category]float64 {
	return map[model.Category]float64{
		model.CategoryPrice:        w.Price,
		model.CategoryCommute:      w.Commute,
		model.CategoryPropertyType: w.PropertyType,
		model.CategoryBedrooms:     w.Bedrooms,
		model.CategoryOutdoorSpace: w.OutdoorSpace,
		model.CategorySchools:      w.Schools,
		model.CategoryGrammarBonus: w.GrammarBonus,
	}
}

// WeightSum returns the sum of all category weights.
func WeightSum(w config.WeightsConfig) float64 {
	return w.Price + w.Commute + w.PropertyType + w.Bedrooms +
		w.OutdoorSpace + w.Schools + w.GrammarBonus
}

// ConfigError lists every problem found in a scoring configuration.
type ConfigError struct {
	Problems []string `json:"problems"`
}

func (e *ConfigError) Error() string {
	return "scorer: config validation failed: " + strings.Join(e.Problems, "; ")
}

// ValidateConfig checks that a ScoringConfig is internally consistent. It
// never corrects values; the caller keeps its previous settings on error.
func ValidateConfig(c config.ScoringConfig) error {
	var errs []string

	if strings.TrimSpace(c.ReferencePostcode) == "" {
		errs = append(errs, "reference_postcode is required")
	} else if _, ok := normalize.CanonicalPostcode(c.ReferencePostcode); !ok {
		errs = append(errs, fmt.Sprintf("reference_postcode %q is not a valid UK postcode", c.ReferencePostcode))
	}

	// Budget.
	if c.BudgetMin < 0 {
		errs = append(errs, "budget_min must be >= 0")
	}
	if c.BudgetMax < 0 {
		errs = append(errs, "budget_max must be >= 0")
	}
	if c.BudgetMin > c.BudgetMax {
		errs = append(errs, fmt.Sprintf("budget_min (%d) must be <= budget_max (%d)", c.BudgetMin, c.BudgetMax))
	}

	if c.MinBedrooms < 0 {
		errs = append(errs, "min_bedrooms must be >= 0")
	}
	if !(c.MaxCommuteMinutes > 0) || math.IsInf(c.MaxCommuteMinutes, 0) {
		errs = append(errs, "max_commute_minutes must be > 0")
	}

	// Weights, in display order so messages are stable.
	weights := Weights(c.Weights)
	for _, cat := range model.Categories {
		w, hi := weights[cat], MaxWeights[cat]
		if math.IsNaN(w) || w < 0 || w > hi {
			errs = append(errs, fmt.Sprintf("weights.%s must be between 0 and %.2f, got %g", cat, hi, w))
		}
	}

	if len(errs) > 0 {
		return &ConfigError{Problems: errs}
	}
	return nil
}
