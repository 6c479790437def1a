package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/pageza/fridgechef/backend/internal/types"
)

// imageState is the working data of one image workflow run
type imageState struct {
	ingredients []string
	formatted   string
	matches     []types.IngredientMatch
}

func (r *Router) imagePipeline(req *types.ChatRequest) *pipeline {
	st := &imageState{}
	return r.newPipeline("fridge_image",
		step{
			name:     StepAnalyzeImage,
			progress: "Analyzing your fridge contents...",
			run: func(ctx context.Context) (*Event, error) {
				img, err := r.resolveImage(ctx, req)
				if err != nil {
					return nil, err
				}
				ingredients, err := r.svc.Vision.ExtractIngredients(ctx, img)
				if err != nil {
					return nil, err
				}
				st.ingredients = ingredients

				n := len(ingredients)
				ev := StepCompleted(StepAnalyzeImage, fmt.Sprintf("Found %d ingredients", n), &StepData{
					IngredientsCount: intPtr(n),
					Ingredients:      ingredients,
				})
				return &ev, nil
			},
		},
		step{
			name:     StepFormatIngredients,
			progress: "Selecting the best ingredients for recipe search...",
			run: func(ctx context.Context) (*Event, error) {
				formatted, err := r.svc.Language.FormatIngredients(ctx, st.ingredients)
				if err != nil {
					return nil, err
				}
				st.formatted = formatted

				ev := StepCompleted(StepFormatIngredients, "Ingredients formatted successfully", nil)
				ev.Summary = &Summary{IngredientsUsedForSearch: formatted}
				return &ev, nil
			},
		},
		step{
			name:     StepSearchRecipes,
			progress: "Searching for recipes you can make...",
			run: func(ctx context.Context) (*Event, error) {
				matches, err := r.svc.Recipes.SearchByIngredients(ctx, st.formatted)
				if err != nil {
					return nil, err
				}
				if len(matches) == 0 {
					ev := Complete(NoIngredientMatchMessage, nil, nil)
					return &ev, nil
				}
				st.matches = matches

				n := len(matches)
				ev := StepCompleted(StepSearchRecipes, fmt.Sprintf("Found %d recipes", n), &StepData{RecipeCount: intPtr(n)})
				return &ev, nil
			},
		},
		step{
			name:     StepGetDetails,
			progress: "Getting detailed recipe information...",
			run: func(ctx context.Context) (*Event, error) {
				ids := make([]int, len(st.matches))
				for i, m := range st.matches {
					ids[i] = m.ID
				}
				details, err := r.svc.Recipes.GetRecipeDetailsBulk(ctx, ids)
				if err != nil {
					return nil, err
				}

				recipes := mergeMatches(details, st.matches)
				ev := Complete(
					fmt.Sprintf("Found %d delicious recipes you can make with your ingredients!", len(recipes)),
					recipes,
					&Summary{
						TotalIngredientsFound:    intPtr(len(st.ingredients)),
						IngredientsUsedForSearch: st.formatted,
						TotalRecipes:             intPtr(len(recipes)),
					},
				)
				return &ev, nil
			},
		},
	)
}

// resolveImage prefers the inline payload over a stored image key
func (r *Router) resolveImage(ctx context.Context, req *types.ChatRequest) (*types.Image, error) {
	if strings.TrimSpace(req.ImageBase64) != "" {
		return r.svc.Images.Decode(req.ImageBase64)
	}
	return r.svc.Images.Load(ctx, strings.TrimSpace(req.ImageKey))
}
