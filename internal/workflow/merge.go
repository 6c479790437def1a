package workflow

import (
	"sort"

	"github.com/pageza/fridgechef/backend/internal/types"
)

// mergeMatches annotates each detail record with the ingredient match that has
// the same id and orders the result by ingredient fit. Records without a match
// get zero counts.
func mergeMatches(details []types.RecipeDetails, matches []types.IngredientMatch) []types.RecipeDetails {
	byID := make(map[int]*types.IngredientMatch, len(matches))
	for i := range matches {
		if _, seen := byID[matches[i].ID]; !seen {
			byID[matches[i].ID] = &matches[i]
		}
	}

	merged := make([]types.RecipeDetails, len(details))
	copy(merged, details)
	for i := range merged {
		merged[i].ApplyMatch(byID[merged[i].ID])
	}
	sortByIngredientFit(merged)
	return merged
}

// sortByIngredientFit orders recipes by used ingredient count, most first,
// then by missed ingredient count, fewest first. Equal recipes keep their
// relative order.
func sortByIngredientFit(recipes []types.RecipeDetails) {
	sort.SliceStable(recipes, func(i, j int) bool {
		ui, uj := recipes[i].UsedCount(), recipes[j].UsedCount()
		if ui != uj {
			return ui > uj
		}
		return recipes[i].MissedCount() < recipes[j].MissedCount()
	})
}
