package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/pageza/fridgechef/backend/internal/types"
)

func (r *Router) queryPipeline(query string) *pipeline {
	var params *types.RecipeSearchParams
	return r.newPipeline("recipe_search",
		step{
			name: StepExtractParameters,
			run: func(ctx context.Context) (*Event, error) {
				p, err := r.svc.Language.ExtractSearchParams(ctx, query)
				if err != nil {
					return nil, err
				}
				if p == nil {
					p = &types.RecipeSearchParams{}
				}
				p.Normalize(query)
				params = p
				return nil, nil
			},
		},
		step{
			name: StepComplexSearch,
			run: func(ctx context.Context) (*Event, error) {
				recipes, err := r.svc.Recipes.ComplexSearch(ctx, params)
				if err != nil {
					return nil, err
				}
				if len(recipes) == 0 {
					ev := Complete(fmt.Sprintf("No recipes found matching '%s'. Try a broader search.", params.Query), nil, nil)
					return &ev, nil
				}
				ev := Complete(searchMessage(params, len(recipes)), recipes, &Summary{
					Query:        query,
					TotalRecipes: intPtr(len(recipes)),
				})
				return &ev, nil
			},
		},
	)
}

// searchMessage describes a complex search result and the filters applied
func searchMessage(p *types.RecipeSearchParams, n int) string {
	parts := []string{fmt.Sprintf("Found %d recipes matching '%s'", n, p.Query)}
	if p.Cuisine != "" {
		parts = append(parts, "cuisine: "+p.Cuisine)
	}
	if p.ExcludeIngredients != "" {
		parts = append(parts, "avoiding: "+p.ExcludeIngredients)
	}
	if p.MaxReadyTime > 0 {
		parts = append(parts, fmt.Sprintf("ready in %d min or less", p.MaxReadyTime))
	}
	return strings.Join(parts, " | ")
}
