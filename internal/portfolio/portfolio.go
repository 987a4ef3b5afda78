// Package portfolio summarizes a scored set of properties for dashboards
// and exports.
package portfolio

import (
	"sort"

	"github.com/sells-group/property-cli/internal/model"
	"github.com/sells-group/property-cli/internal/scorer"
)

// UnknownBorough groups records without a borough.
const UnknownBorough = "Unknown"

// Stats holds the spread of one numeric attribute. All fields are 0 for an
// empty set.
type Stats struct {
	Min    float64 `json:"min"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// BoroughStats is the per-borough breakdown.
type BoroughStats struct {
	Borough       string  `json:"borough"`
	Count         int     `json:"count"`
	MeanPrice     float64 `json:"mean_price"`
	MeanComposite float64 `json:"mean_composite"`
}

// Summary describes a whole portfolio.
type Summary struct {
	Count          int                        `json:"count"`
	Price          Stats                      `json:"price"`
	CompositeScore Stats                      `json:"composite_score"`
	PropertyTypes  map[model.PropertyType]int `json:"property_types"`
	Bedrooms       map[int]int                `json:"bedrooms"`
	CategoryMeans  map[model.Category]float64 `json:"category_means"`
	Bands          map[string]int             `json:"bands"`
	Boroughs       []BoroughStats             `json:"boroughs"`
	PriorityCount  int                        `json:"priority_count"`

	// MeanPricePerSqFt averages only records with a known floor area.
	MeanPricePerSqFt float64 `json:"mean_price_per_sqft"`
}

// Aggregate summarizes scored, joining each entry to its record by ID.
// Scored entries without a matching record are ignored. It never fails;
// an empty input yields a zero Summary with empty maps.
func Aggregate(records []model.PropertyRecord, scored []model.ScoredProperty) Summary {
	byID := make(map[string]model.PropertyRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	s := Summary{
		PropertyTypes: map[model.PropertyType]int{},
		Bedrooms:      map[int]int{},
		CategoryMeans: make(map[model.Category]float64, len(model.Categories)),
		Bands: map[string]int{
			scorer.BandStrong: 0,
			scorer.BandFair:   0,
			scorer.BandWeak:   0,
		},
		Boroughs: []BoroughStats{},
	}
	for _, cat := range model.Categories {
		s.CategoryMeans[cat] = 0
	}

	var (
		prices, composites []float64
		ppsfSum            float64
		ppsfN              int
		boroughs           = map[string]*boroughAcc{}
	)

	for _, sp := range scored {
		rec, ok := byID[sp.PropertyID]
		if !ok {
			continue
		}
		s.Count++
		prices = append(prices, float64(rec.Price))
		composites = append(composites, sp.CompositeScore)
		s.PropertyTypes[rec.PropertyType]++
		s.Bedrooms[rec.Bedrooms]++
		s.Bands[scorer.Band(sp.CompositeScore)]++
		if sp.Flags.Has(model.FlagPriority) {
			s.PriorityCount++
		}
		for _, cat := range model.Categories {
			s.CategoryMeans[cat] += sp.CategoryScores[cat]
		}
		if v := rec.PricePerSqFt(); v > 0 {
			ppsfSum += v
			ppsfN++
		}

		name := rec.Borough
		if name == "" {
			name = UnknownBorough
		}
		acc := boroughs[name]
		if acc == nil {
			acc = &boroughAcc{}
			boroughs[name] = acc
		}
		acc.count++
		acc.price += float64(rec.Price)
		acc.composite += sp.CompositeScore
	}

	if s.Count == 0 {
		return s
	}

	s.Price = describe(prices)
	s.CompositeScore = describe(composites)
	for cat, total := range s.CategoryMeans {
		s.CategoryMeans[cat] = total / float64(s.Count)
	}
	if ppsfN > 0 {
		s.MeanPricePerSqFt = ppsfSum / float64(ppsfN)
	}

	for name, acc := range boroughs {
		n := float64(acc.count)
		s.Boroughs = append(s.Boroughs, BoroughStats{
			Borough:       name,
			Count:         acc.count,
			MeanPrice:     acc.price / n,
			MeanComposite: acc.composite / n,
		})
	}
	sort.Slice(s.Boroughs, func(i, j int) bool {
		if s.Boroughs[i].Count != s.Boroughs[j].Count {
			return s.Boroughs[i].Count > s.Boroughs[j].Count
		}
		return s.Boroughs[i].Borough < s.Boroughs[j].Borough
	})
	return s
}

type boroughAcc struct {
	count            int
	price, composite float64
}

// describe computes Stats over a non-empty slice. vals is reordered.
func describe(vals []float64) Stats {
	sort.Float64s(vals)
	var sum float64
	for _, v := range vals {
		sum += v
	}
	n := len(vals)
	median := vals[n/2]
	if n%2 == 0 {
		median = (vals[n/2-1] + vals[n/2]) / 2
	}
	return Stats{
		Min:    vals[0],
		Mean:   sum / float64(n),
		Median: median,
		Max:    vals[n-1],
	}
}
