// Package ranking orders scored properties and selects the top of the list.
package ranking

import (
	"sort"

	"github.com/sells-group/property-cli/internal/model"
)

// Less reports whether a ranks ahead of b: higher composite first, then
// higher price points, then higher commute points, then the smaller ID.
// Distinct IDs never compare equal, so the order is total.
func Less(a, b model.ScoredProperty) bool {
	if a.CompositeScore != b.CompositeScore {
		return a.CompositeScore > b.CompositeScore
	}
	if pa, pb := a.CategoryScores[model.CategoryPrice], b.CategoryScores[model.CategoryPrice]; pa != pb {
		return pa > pb
	}
	if ca, cb := a.CategoryScores[model.CategoryCommute], b.CategoryScores[model.CategoryCommute]; ca != cb {
		return ca > cb
	}
	return a.PropertyID < b.PropertyID
}

// Rank returns a sorted copy of scored. The input is not modified.
func Rank(scored []model.ScoredProperty) []model.ScoredProperty {
	out := make([]model.ScoredProperty, len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(i, j int) bool {
		return Less(out[i], out[j])
	})
	return out
}

// TopN returns the first k entries of ranked, or all of them when there are
// fewer than k. A non-positive k yields an empty slice.
func TopN(ranked []model.ScoredProperty, k int) []model.ScoredProperty {
	if k <= 0 {
		return []model.ScoredProperty{}
	}
	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]model.ScoredProperty, k)
	copy(out, ranked[:k])
	return out
}

// Top ranks scored and returns its first k entries.
func Top(scored []model.ScoredProperty, k int) []model.ScoredProperty {
	return TopN(Rank(scored), k)
}

// Position returns the 1-based rank of id in ranked, or 0 when absent.
func Position(ranked []model.ScoredProperty, id string) int {
	for i, sp := range ranked {
		if sp.PropertyID == id {
			return i + 1
		}
	}
	return 0
}
