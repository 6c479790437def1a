package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/fridgechef/backend/internal/models"
	"github.com/pageza/fridgechef/backend/internal/types"
)

// VisionModel reads ingredients off a fridge photo
type VisionModel interface {
	ExtractIngredients(ctx context.Context, img *types.Image) ([]string, error)
}

// LanguageModel covers the text-only model calls of the chat workflows
type LanguageModel interface {
	FormatIngredients(ctx context.Context, ingredients []string) (string, error)
	ExtractSearchParams(ctx context.Context, query string) (*types.RecipeSearchParams, error)
	AnswerQuestion(ctx context.Context, question string) (string, error)
}

// IntentClassifier labels a free-text message
type IntentClassifier interface {
	ClassifyIntent(ctx context.Context, query string) (types.Intent, error)
}

// RecipeSearcher is the recipe search API
type RecipeSearcher interface {
	SearchByIngredients(ctx context.Context, ingredients string) ([]types.IngredientMatch, error)
	GetRecipeDetailsBulk(ctx context.Context, ids []int) ([]types.RecipeDetails, error)
	ComplexSearch(ctx context.Context, params *types.RecipeSearchParams) ([]types.RecipeDetails, error)
	RandomRecipes(ctx context.Context, n int) ([]types.RecipeDetails, error)
}

// ImageResolver turns chat image payloads into validated images
type ImageResolver interface {
	Decode(payload string) (*types.Image, error)
	Load(ctx context.Context, key string) (*types.Image, error)
}

// ImageStore keeps uploaded fridge photos
type ImageStore interface {
	Store(ctx context.Context, payload string) (string, error)
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Signup(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GenerateToken(claims *types.TokenClaims) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// ISavedRecipeService defines the interface for saved recipe operations
type ISavedRecipeService interface {
	Save(ctx context.Context, userID uuid.UUID, recipe *types.RecipeDetails) (*models.SavedRecipe, error)
	List(ctx context.Context, userID uuid.UUID, q types.ListSavedRecipesQuery) ([]models.SavedRecipe, error)
	Get(ctx context.Context, userID uuid.UUID, recipeID int) (*models.SavedRecipe, error)
	Delete(ctx context.Context, userID uuid.UUID, recipeID int) (*models.SavedRecipe, error)
}

// IPopularRecipeService defines the interface for the popular recipes listing
type IPopularRecipeService interface {
	Popular(ctx context.Context) ([]types.RecipeDetails, error)
}

var (
	_ VisionModel           = (*GeminiService)(nil)
	_ LanguageModel         = (*GeminiService)(nil)
	_ IntentClassifier      = (*GeminiService)(nil)
	_ RecipeSearcher        = (*SpoonacularService)(nil)
	_ ImageResolver         = (*ImageService)(nil)
	_ ImageStore            = (*ImageService)(nil)
	_ IAuthService          = (*AuthService)(nil)
	_ ISavedRecipeService   = (*SavedRecipeService)(nil)
	_ IPopularRecipeService = (*PopularRecipeService)(nil)
)
