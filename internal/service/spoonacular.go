package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pageza/fridgechef/backend/config"
	"github.com/pageza/fridgechef/backend/internal/types"
)

// IngredientSearchCount is how many candidates an ingredient search asks for
const IngredientSearchCount = 20

// SpoonacularService is a client for the Spoonacular recipe API. Calls are
// paced by a token bucket so bursts of chat turns stay under the plan's
// per-second limit.
type SpoonacularService struct {
	apiKey  string
	apiURL  string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// NewSpoonacularService creates a new SpoonacularService instance
func NewSpoonacularService(cfg *config.Config, logger *zap.SugaredLogger) (*SpoonacularService, error) {
	if cfg.SpoonacularAPIKey == "" {
		return nil, fmt.Errorf("spoonacular API key is required")
	}
	rps := cfg.SpoonacularRPS
	if rps <= 0 {
		rps = 5
	}
	return &SpoonacularService{
		apiKey:  cfg.SpoonacularAPIKey,
		apiURL:  strings.TrimRight(cfg.SpoonacularAPIURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger.Named("spoonacular"),
	}, nil
}

// SearchByIngredients finds recipes that use as many of the given ingredients
// as possible. ingredients is a comma-separated list.
func (s *SpoonacularService) SearchByIngredients(ctx context.Context, ingredients string) ([]types.IngredientMatch, error) {
	q := url.Values{}
	q.Set("ingredients", ingredients)
	q.Set("number", strconv.Itoa(IngredientSearchCount))
	q.Set("ranking", "2")
	q.Set("ignorePantry", "true")

	body, err := s.get(ctx, "/recipes/findByIngredients", q)
	if err != nil {
		return nil, fmt.Errorf("failed to search by ingredients: %w", err)
	}

	var matches []types.IngredientMatch
	if err := json.Unmarshal(body, &matches); err != nil {
		return nil, fmt.Errorf("%w: findByIngredients: %v", ErrMalformedResponse, err)
	}
	return matches, nil
}

// GetRecipeDetailsBulk fetches full records for the given ids. Records that
// fail to decode are skipped, so the result may be shorter than ids.
func (s *SpoonacularService) GetRecipeDetailsBulk(ctx context.Context, ids []int) ([]types.RecipeDetails, error) {
	if len(ids) == 0 {
		return []types.RecipeDetails{}, nil
	}

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = strconv.Itoa(id)
	}
	q := url.Values{}
	q.Set("ids", strings.Join(strIDs, ","))
	q.Set("includeNutrition", "true")

	body, err := s.get(ctx, "/recipes/informationBulk", q)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe details: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: informationBulk: %v", ErrMalformedResponse, err)
	}
	return s.decodeRecipes(raw), nil
}

// ComplexSearch runs a filtered search with full recipe information attached
func (s *SpoonacularService) ComplexSearch(ctx context.Context, params *types.RecipeSearchParams) ([]types.RecipeDetails, error) {
	q := url.Values{}
	q.Set("query", params.Query)
	q.Set("number", strconv.Itoa(params.Number))
	q.Set("addRecipeInformation", "true")
	q.Set("addRecipeNutrition", "true")
	q.Set("fillIngredients", "true")
	setIfNotEmpty(q, "cuisine", params.Cuisine)
	setIfNotEmpty(q, "intolerances", params.Intolerances)
	setIfNotEmpty(q, "includeIngredients", params.IncludeIngredients)
	setIfNotEmpty(q, "excludeIngredients", params.ExcludeIngredients)
	if params.MaxReadyTime > 0 {
		q.Set("maxReadyTime", strconv.Itoa(params.MaxReadyTime))
	}

	body, err := s.get(ctx, "/recipes/complexSearch", q)
	if err != nil {
		return nil, fmt.Errorf("failed to run complex search: %w", err)
	}

	var result struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: complexSearch: %v", ErrMalformedResponse, err)
	}
	return s.decodeRecipes(result.Results), nil
}

// RandomRecipes returns n random recipes with nutrition attached
func (s *SpoonacularService) RandomRecipes(ctx context.Context, n int) ([]types.RecipeDetails, error) {
	q := url.Values{}
	q.Set("number", strconv.Itoa(n))
	q.Set("includeNutrition", "true")

	body, err := s.get(ctx, "/recipes/random", q)
	if err != nil {
		return nil, fmt.Errorf("failed to get random recipes: %w", err)
	}

	var result struct {
		Recipes []json.RawMessage `json:"recipes"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: random: %v", ErrMalformedResponse, err)
	}
	return s.decodeRecipes(result.Recipes), nil
}

func (s *SpoonacularService) decodeRecipes(raw []json.RawMessage) []types.RecipeDetails {
	recipes := make([]types.RecipeDetails, 0, len(raw))
	for i, item := range raw {
		var r types.RecipeDetails
		if err := json.Unmarshal(item, &r); err != nil {
			s.logger.Warnw("skipping undecodable recipe", "index", i, "error", err)
			continue
		}
		recipes = append(recipes, r)
	}
	return recipes
}

func (s *SpoonacularService) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q.Set("apiKey", s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	s.logger.Debugw("spoonacular call finished", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Service: "spoonacular", StatusCode: resp.StatusCode, Body: string(body)}
		switch resp.StatusCode {
		case http.StatusPaymentRequired, http.StatusTooManyRequests:
			return nil, fmt.Errorf("%w: %w", ErrQuotaExceeded, apiErr)
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, apiErr)
		}
		return nil, apiErr
	}
	return body, nil
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		q.Set(key, value)
	}
}
