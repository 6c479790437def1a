package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/fridgechef/backend/internal/middleware"
	"github.com/pageza/fridgechef/backend/internal/service"
	"github.com/pageza/fridgechef/backend/internal/types"
)

type RecipeHandler struct {
	saved       service.ISavedRecipeService
	popular     service.IPopularRecipeService
	authService service.IAuthService
	logger      *zap.SugaredLogger
}

func NewRecipeHandler(saved service.ISavedRecipeService, popular service.IPopularRecipeService, authService service.IAuthService, logger *zap.SugaredLogger) *RecipeHandler {
	return &RecipeHandler{
		saved:       saved,
		popular:     popular,
		authService: authService,
		logger:      logger.Named("recipes"),
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/recipes/popular", h.Popular)

	recipes := router.Group("/recipes")
	recipes.Use(middleware.AuthMiddleware(h.authService))
	{
		recipes.POST("", h.SaveRecipe)
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
	}
}

// Popular returns a handful of random recipes for the landing page
func (h *RecipeHandler) Popular(c *gin.Context) {
	recipes, err := h.popular.Popular(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to fetch popular recipes", "error", err)
		status := http.StatusBadGateway
		if errors.Is(err, service.ErrQuotaExceeded) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": "Failed to fetch popular recipes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) SaveRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if msg := validateSaveRecipe(body); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var recipe types.RecipeDetails
	if err := json.Unmarshal(body, &recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation error: " + err.Error()})
		return
	}

	saved, err := h.saved.Save(c.Request.Context(), userID, &recipe)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateRecipe) {
			c.JSON(http.StatusConflict, gin.H{"error": "Recipe already saved"})
			return
		}
		h.logger.Errorw("failed to save recipe", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save recipe"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Recipe saved successfully",
		"recipe":  saved,
	})
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var q types.ListSavedRecipesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query"})
		return
	}

	recipes, err := h.saved.List(c.Request.Context(), userID, q)
	if err != nil {
		h.logger.Errorw("failed to list recipes", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes": recipes,
		"count":   len(recipes),
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	userID, recipeID, ok := h.recipeParams(c)
	if !ok {
		return
	}

	recipe, err := h.saved.Get(c.Request.Context(), userID, recipeID)
	if err != nil {
		h.recipeError(c, err, "Failed to fetch recipe")
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, recipeID, ok := h.recipeParams(c)
	if !ok {
		return
	}

	recipe, err := h.saved.Delete(c.Request.Context(), userID, recipeID)
	if err != nil {
		h.recipeError(c, err, "Failed to delete recipe")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Recipe deleted successfully",
		"recipe":  recipe,
	})
}

func (h *RecipeHandler) recipeParams(c *gin.Context) (userID uuid.UUID, recipeID int, ok bool) {
	id, authed := middleware.UserID(c)
	if !authed {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return id, 0, false
	}
	recipeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return id, 0, false
	}
	return id, recipeID, true
}

func (h *RecipeHandler) recipeError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, service.ErrRecipeNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	h.logger.Errorw(fallback, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

// validateSaveRecipe checks the raw body the way the web client expects and
// returns a user-facing message, or "" when the body is acceptable.
func validateSaveRecipe(body []byte) string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "Invalid request body"
	}

	var id float64
	if err := json.Unmarshal(raw["id"], &id); err != nil || id == 0 || id != float64(int(id)) {
		return "Missing or invalid recipe id"
	}
	var title string
	if err := json.Unmarshal(raw["title"], &title); err != nil || title == "" {
		return "Missing or invalid recipe title"
	}
	var ingredients []json.RawMessage
	if err := json.Unmarshal(raw["ingredients"], &ingredients); err != nil || len(ingredients) == 0 {
		return "Missing or invalid ingredients array"
	}
	var steps []json.RawMessage
	if err := json.Unmarshal(raw["analyzedInstructions"], &steps); err != nil || steps == nil {
		return "Missing or invalid analyzedInstructions array"
	}
	return ""
}
