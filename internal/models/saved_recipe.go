package models

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pageza/fridgechef/backend/internal/types"
)

// EmbeddingDimensions is the width of the saved recipe embedding column
const EmbeddingDimensions = 64

// SavedRecipe is a recipe a user kept from a chat result. SpoonacularID is
// unique per user.
type SavedRecipe struct {
	ID                   uuid.UUID                           `gorm:"type:varchar(36);primarykey" json:"-"`
	UserID               uuid.UUID                           `gorm:"type:varchar(36);not null;uniqueIndex:idx_saved_recipes_user_recipe" json:"-"`
	SpoonacularID        int                                 `gorm:"not null;uniqueIndex:idx_saved_recipes_user_recipe" json:"id"`
	Title                string                              `gorm:"size:255;not null" json:"title"`
	Image                string                              `gorm:"size:512" json:"image"`
	ReadyInMinutes       int                                 `json:"readyInMinutes"`
	PreparationMinutes   *int                                `json:"preparationMinutes,omitempty"`
	CookingMinutes       *int                                `json:"cookingMinutes,omitempty"`
	Nutrition            types.Nutrition                     `gorm:"embedded;embeddedPrefix:nutrition_" json:"nutrition"`
	Ingredients          JSONColumn[[]types.Ingredient]      `gorm:"type:jsonb;not null" json:"ingredients"`
	Summary              string                              `gorm:"type:text" json:"summary"`
	AnalyzedInstructions JSONColumn[[]types.InstructionStep] `gorm:"type:jsonb;not null" json:"analyzedInstructions"`
	Embedding            pgvector.Vector                     `gorm:"type:vector(64)" json:"-"`
	SavedAt              time.Time                           `gorm:"not null;index" json:"savedAt"`
	CreatedAt            time.Time                           `json:"-"`
	UpdatedAt            time.Time                           `json:"-"`
}

// NewSavedRecipe copies the stored fields of a recipe for userID
func NewSavedRecipe(userID uuid.UUID, r *types.RecipeDetails) *SavedRecipe {
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []types.Ingredient{}
	}
	steps := r.AnalyzedInstructions
	if steps == nil {
		steps = []types.InstructionStep{}
	}
	return &SavedRecipe{
		ID:                   uuid.New(),
		UserID:               userID,
		SpoonacularID:        r.ID,
		Title:                r.Title,
		Image:                r.Image,
		ReadyInMinutes:       r.ReadyInMinutes,
		PreparationMinutes:   r.PreparationMinutes,
		CookingMinutes:       r.CookingMinutes,
		Nutrition:            r.Nutrition,
		Ingredients:          NewJSONColumn(ingredients),
		Summary:              r.Summary,
		AnalyzedInstructions: NewJSONColumn(steps),
		SavedAt:              time.Now().UTC(),
	}
}

// SearchText is the text an embedding is computed from
func (r *SavedRecipe) SearchText() string {
	text := r.Title
	for _, ing := range r.Ingredients.Data {
		text += " " + ing.Name
	}
	return text
}
