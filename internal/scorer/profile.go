package scorer

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/property-cli/internal/config"
)

// profileFile is the on-disk shape of a weight profile. Pointer fields
// distinguish "not set" from zero so a profile can override selectively.
type profileFile struct {
	Scoring struct {
		ReferencePostcode *string  `yaml:"reference_postcode"`
		BudgetMin         *int64   `yaml:"budget_min"`
		BudgetMax         *int64   `yaml:"budget_max"`
		MinBedrooms       *int     `yaml:"min_bedrooms"`
		MaxCommuteMinutes *float64 `yaml:"max_commute_minutes"`
		Weights           struct {
			Price        *float64 `yaml:"price"`
			Commute      *float64 `yaml:"commute"`
			PropertyType *float64 `yaml:"property_type"`
			Bedrooms     *float64 `yaml:"bedrooms"`
			OutdoorSpace *float64 `yaml:"outdoor_space"`
			Schools      *float64 `yaml:"schools"`
			GrammarBonus *float64 `yaml:"grammar_bonus"`
		} `yaml:"weights"`
	} `yaml:"scoring"`
}

// LoadProfile reads a YAML profile from path and overlays the values it
// sets onto base. The result is validated.
func LoadProfile(path string, base config.ScoringConfig) (config.ScoringConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, eris.Wrapf(err, "scorer: read profile %s", path)
	}

	var p profileFile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return base, eris.Wrapf(err, "scorer: parse profile %s", path)
	}

	out := base
	s := p.Scoring
	set(&out.ReferencePostcode, s.ReferencePostcode)
	set(&out.BudgetMin, s.BudgetMin)
	set(&out.BudgetMax, s.BudgetMax)
	set(&out.MinBedrooms, s.MinBedrooms)
	set(&out.MaxCommuteMinutes, s.MaxCommuteMinutes)
	set(&out.Weights.Price, s.Weights.Price)
	set(&out.Weights.Commute, s.Weights.Commute)
	set(&out.Weights.PropertyType, s.Weights.PropertyType)
	set(&out.Weights.Bedrooms, s.Weights.Bedrooms)
	set(&out.Weights.OutdoorSpace, s.Weights.OutdoorSpace)
	set(&out.Weights.Schools, s.Weights.Schools)
	set(&out.Weights.GrammarBonus, s.Weights.GrammarBonus)

	if err := ValidateConfig(out); err != nil {
		return base, err
	}
	return out, nil
}

// SaveProfile writes cfg as a complete profile.
func SaveProfile(path string, cfg config.ScoringConfig) error {
	data, err := yaml.Marshal(struct {
		Scoring config.ScoringConfig `yaml:"scoring"`
	}{cfg})
	if err != nil {
		return eris.Wrap(err, "scorer: encode profile")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "scorer: write profile %s", path)
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
