package normalize

import (
	"strconv"

	"github.com/sells-group/property-cli/internal/model"
)

// ToRaw renders a record back into raw input. Normalizing the result yields
// a record equal to rec.
func ToRaw(rec model.PropertyRecord) model.RawProperty {
	return model.RawProperty{
		ID:                      optionalText(rec.ID),
		SourceURL:               optionalText(rec.SourceURL),
		Address:                 optionalText(rec.Address),
		Postcode:                optionalText(rec.Postcode),
		Price:                   model.Raw(strconv.FormatInt(rec.Price, 10)),
		PropertyType:            model.Raw(rec.PropertyType.String()),
		Bedrooms:                model.Raw(strconv.Itoa(rec.Bedrooms)),
		Bathrooms:               optionalFloat(rec.Bathrooms),
		SquareFeet:              optionalFloat(rec.SquareFeet),
		OutdoorSpace:            model.Raw(rec.OutdoorSpace.String()),
		SchoolRating:            model.Raw(rec.SchoolRating.String()),
		GrammarSchoolDistanceKM: optionalFloat(rec.GrammarSchoolDistanceKM),
		CommuteMinutes:          optionalFloat(rec.CommuteMinutes),
		Borough:                 optionalText(rec.Borough),
	}
}

func optionalText(s string) model.RawValue {
	if s == "" {
		return model.RawValue{}
	}
	return model.Raw(s)
}

func optionalFloat(f *float64) model.RawValue {
	if f == nil {
		return model.RawValue{}
	}
	return model.Raw(strconv.FormatFloat(*f, 'g', -1, 64))
}
