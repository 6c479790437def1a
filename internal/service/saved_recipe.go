package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/fridgechef/backend/internal/models"
	"github.com/pageza/fridgechef/backend/internal/types"
)

// DefaultSavedRecipeSort is applied when the caller asks for no or an unknown order
const DefaultSavedRecipeSort = "-savedAt"

// likeEscaper makes search text match literally inside a LIKE pattern
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

var savedRecipeSorts = map[string]string{
	"savedAt":        "saved_at",
	"title":          "title",
	"readyInMinutes": "ready_in_minutes",
}

// SavedRecipeService handles a user's saved recipes
type SavedRecipeService struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewSavedRecipeService creates a new SavedRecipeService instance
func NewSavedRecipeService(db *gorm.DB, logger *zap.SugaredLogger) *SavedRecipeService {
	return &SavedRecipeService{
		db:     db,
		logger: logger.Named("saved_recipes"),
	}
}

// Save stores recipe for the user. Saving the same search API id twice fails
// with ErrDuplicateRecipe.
func (s *SavedRecipeService) Save(ctx context.Context, userID uuid.UUID, recipe *types.RecipeDetails) (*models.SavedRecipe, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.SavedRecipe{}).
		Where("user_id = ? AND spoonacular_id = ?", userID, recipe.ID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check saved recipe: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateRecipe
	}

	saved := models.NewSavedRecipe(userID, recipe)
	saved.Embedding = GenerateEmbedding(saved.SearchText())

	if err := s.db.WithContext(ctx).Create(saved).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateRecipe
		}
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}

	s.logger.Infow("recipe saved", "user_id", userID, "recipe_id", recipe.ID)
	return saved, nil
}

// List returns the user's saved recipes. A search term filters by title and
// ingredient text; on Postgres, results without an explicit sort are ordered
// by embedding similarity to the term.
func (s *SavedRecipeService) List(ctx context.Context, userID uuid.UUID, q types.ListSavedRecipesQuery) ([]models.SavedRecipe, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)

	search := strings.TrimSpace(q.Search)
	if search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(CAST(ingredients AS TEXT)) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	if search != "" && q.Sort == "" && s.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{GenerateEmbedding(search)}},
		})
	} else {
		query = query.Order(savedRecipeOrder(q.Sort))
	}

	recipes := []models.SavedRecipe{}
	if err := query.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list saved recipes: %w", err)
	}
	return recipes, nil
}

// Get returns one saved recipe by its search API id
func (s *SavedRecipeService) Get(ctx context.Context, userID uuid.UUID, recipeID int) (*models.SavedRecipe, error) {
	var recipe models.SavedRecipe
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND spoonacular_id = ?", userID, recipeID).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get saved recipe: %w", err)
	}
	return &recipe, nil
}

// Delete removes a saved recipe and returns what was removed
func (s *SavedRecipeService) Delete(ctx context.Context, userID uuid.UUID, recipeID int) (*models.SavedRecipe, error) {
	recipe, err := s.Get(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&models.SavedRecipe{}, "id = ?", recipe.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to delete saved recipe: %w", err)
	}
	s.logger.Infow("recipe removed", "user_id", userID, "recipe_id", recipeID)
	return recipe, nil
}

// savedRecipeOrder maps a sort key such as "-title" onto an ORDER BY clause
func savedRecipeOrder(sort string) string {
	key := strings.TrimPrefix(sort, "-")
	column, ok := savedRecipeSorts[key]
	if !ok {
		return savedRecipeOrder(DefaultSavedRecipeSort)
	}
	if strings.HasPrefix(sort, "-") {
		return column + " DESC"
	}
	return column + " ASC"
}
