package scorer

import "github.com/sells-group/property-cli/internal/model"

// Score bands used by dashboards and exports.
const (
	BandStrong = "strong"
	BandFair   = "fair"
	BandWeak   = "weak"
)

// Band classifies a composite score: strong from 80, fair from 60.
func Band(score float64) string {
	switch {
	case score >= 80:
		return BandStrong
	case score >= 60:
		return BandFair
	}
	return BandWeak
}

// Flags derives the markers for rec under s. A property is a priority when
// it is within budget, has an acceptable resolved commute and meets the
// bedroom minimum.
func Flags(rec model.PropertyRecord, s *Settings) model.Flags {
	cfg := s.cfg
	flags := model.Flags{}

	inBudget := rec.Price >= cfg.BudgetMin && rec.Price <= cfg.BudgetMax
	if inBudget {
		flags = append(flags, model.FlagWithinBudget)
	}
	commuteOK := rec.CommuteMinutes != nil && *rec.CommuteMinutes <= cfg.MaxCommuteMinutes
	if commuteOK {
		flags = append(flags, model.FlagAcceptableCommute)
	}
	if inBudget && commuteOK && rec.Bedrooms >= cfg.MinBedrooms {
		flags = append(flags, model.FlagPriority)
	}
	return flags
}
