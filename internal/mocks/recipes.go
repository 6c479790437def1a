package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/fridgechef/backend/internal/models"
	"github.com/pageza/fridgechef/backend/internal/types"
)

// MockRecipeSearcher stands in for the recipe search API client
type MockRecipeSearcher struct {
	mock.Mock
}

func (m *MockRecipeSearcher) SearchByIngredients(ctx context.Context, ingredients string) ([]types.IngredientMatch, error) {
	args := m.Called(ctx, ingredients)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.IngredientMatch), args.Error(1)
}

func (m *MockRecipeSearcher) GetRecipeDetailsBulk(ctx context.Context, ids []int) ([]types.RecipeDetails, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RecipeDetails), args.Error(1)
}

func (m *MockRecipeSearcher) ComplexSearch(ctx context.Context, params *types.RecipeSearchParams) ([]types.RecipeDetails, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RecipeDetails), args.Error(1)
}

func (m *MockRecipeSearcher) RandomRecipes(ctx context.Context, n int) ([]types.RecipeDetails, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RecipeDetails), args.Error(1)
}

// MockSavedRecipeService is a mock implementation of the saved recipe store
type MockSavedRecipeService struct {
	mock.Mock
}

func (m *MockSavedRecipeService) Save(ctx context.Context, userID uuid.UUID, recipe *types.RecipeDetails) (*models.SavedRecipe, error) {
	args := m.Called(ctx, userID, recipe)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedRecipe), args.Error(1)
}

func (m *MockSavedRecipeService) List(ctx context.Context, userID uuid.UUID, q types.ListSavedRecipesQuery) ([]models.SavedRecipe, error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SavedRecipe), args.Error(1)
}

func (m *MockSavedRecipeService) Get(ctx context.Context, userID uuid.UUID, recipeID int) (*models.SavedRecipe, error) {
	args := m.Called(ctx, userID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedRecipe), args.Error(1)
}

func (m *MockSavedRecipeService) Delete(ctx context.Context, userID uuid.UUID, recipeID int) (*models.SavedRecipe, error) {
	args := m.Called(ctx, userID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedRecipe), args.Error(1)
}

// MockPopularRecipeService is a mock implementation of the popular recipes listing
type MockPopularRecipeService struct {
	mock.Mock
}

func (m *MockPopularRecipeService) Popular(ctx context.Context) ([]types.RecipeDetails, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RecipeDetails), args.Error(1)
}
