package normalize

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var londonBoroughs = []string{
	"Barking and Dagenham", "Barnet", "Bexley", "Brent", "Bromley", "Camden",
	"City of London", "Croydon", "Ealing", "Enfield", "Greenwich", "Hackney",
	"Hammersmith and Fulham", "Haringey", "Harrow", "Havering", "Hillingdon",
	"Hounslow", "Islington", "Kensington and Chelsea", "Kingston upon Thames",
	"Lambeth", "Lewisham", "Merton", "Newham", "Redbridge", "Richmond upon Thames",
	"Southwark", "Sutton", "Tower Hamlets", "Waltham Forest", "Wandsworth", "Westminster",
}

var boroughByKey = func() map[string]string {
	m := make(map[string]string, len(londonBoroughs))
	for _, b := range londonBoroughs {
		m[strings.ToLower(b)] = b
	}
	return m
}()

var titleCaser = cases.Title(language.BritishEnglish)

// Borough canonicalizes a borough name. Known London boroughs take their
// official spelling; anything else is title-cased and reported with a
// warning, suggesting a known borough when one contains the input.
func Borough(s string) (string, *Warning) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "", nil
	}
	key := strings.ToLower(s)
	if b, ok := boroughByKey[key]; ok {
		return b, nil
	}

	name := titleCaser.String(s)
	var suggestions []string
	for k, b := range boroughByKey {
		if strings.Contains(k, key) {
			suggestions = append(suggestions, b)
		}
	}
	if len(suggestions) > 0 {
		sort.Strings(suggestions)
		return name, &Warning{
			Field:   "borough",
			Message: fmt.Sprintf("%q not recognised, did you mean %q?", name, suggestions[0]),
		}
	}
	return name, &Warning{Field: "borough", Message: fmt.Sprintf("%q is not a London borough", name)}
}
