package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/fridgechef/backend/internal/middleware"
	"github.com/pageza/fridgechef/backend/internal/service"
)

// Dependencies are the services the HTTP handlers are built from
type Dependencies struct {
	DB           *gorm.DB
	Auth         service.IAuthService
	SavedRecipes service.ISavedRecipeService
	Popular      service.IPopularRecipeService
	Images       service.ImageStore
	Chat         ChatRouter
	ChatLimiter  *middleware.RateLimiter
	Logger       *zap.SugaredLogger
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	health := NewHealthHandler(deps.DB)
	router.GET("/health", health.Check)
	router.GET("/api/health", health.Check)

	v1 := router.Group("/api/v1")
	NewAuthHandler(deps.Auth, deps.Logger).RegisterRoutes(v1)
	NewChatHandler(deps.Chat, deps.Auth, deps.ChatLimiter, deps.Logger).RegisterRoutes(v1)
	NewImageHandler(deps.Images, deps.Auth, deps.Logger).RegisterRoutes(v1)
	NewRecipeHandler(deps.SavedRecipes, deps.Popular, deps.Auth, deps.Logger).RegisterRoutes(v1)
}
