package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/fridgechef/backend/internal/types"
)

const (
	popularRecipesKey   = "recipes:popular"
	popularRecipesTTL   = time.Hour
	PopularRecipesCount = 5
)

// PopularRecipeService serves the landing page recipes. Results are cached in
// redis for an hour when a client is configured.
type PopularRecipeService struct {
	recipes RecipeSearcher
	redis   *redis.Client
	logger  *zap.SugaredLogger
}

// NewPopularRecipeService creates a new PopularRecipeService instance. redis may be nil.
func NewPopularRecipeService(recipes RecipeSearcher, redisClient *redis.Client, logger *zap.SugaredLogger) *PopularRecipeService {
	return &PopularRecipeService{
		recipes: recipes,
		redis:   redisClient,
		logger:  logger.Named("popular"),
	}
}

// Popular returns the cached popular recipes, fetching a fresh set on a miss
func (s *PopularRecipeService) Popular(ctx context.Context) ([]types.RecipeDetails, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	recipes, err := s.recipes.RandomRecipes(ctx, PopularRecipesCount)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch popular recipes: %w", err)
	}

	if s.redis != nil {
		data, err := json.Marshal(recipes)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal popular recipes: %w", err)
		}
		if err := s.redis.Set(ctx, popularRecipesKey, data, popularRecipesTTL).Err(); err != nil {
			s.logger.Warnw("failed to cache popular recipes", "error", err)
		}
	}
	return recipes, nil
}

func (s *PopularRecipeService) fromCache(ctx context.Context) ([]types.RecipeDetails, bool) {
	if s.redis == nil {
		return nil, false
	}
	data, err := s.redis.Get(ctx, popularRecipesKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warnw("failed to read popular recipes cache", "error", err)
		}
		return nil, false
	}

	var recipes []types.RecipeDetails
	if err := json.Unmarshal(data, &recipes); err != nil {
		s.logger.Warnw("discarding corrupt popular recipes cache", "error", err)
		return nil, false
	}
	return recipes, true
}
