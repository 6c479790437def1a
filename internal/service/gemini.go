package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/fridgechef/backend/config"
	"github.com/pageza/fridgechef/backend/internal/types"
)

const (
	fridgePrompt = `Analyze this refrigerator image and list EVERY SINGLE visible item.

IMPORTANT: Just list the items, one per line. No headers, no sections, no explanations.
Don't say "Top shelf" or "Middle shelf" - just list the actual food items.

Be SPECIFIC with names:
- Include brand names when visible (e.g., "Heinz ketchup" not just "ketchup")
- Be specific about types (e.g., "whole milk" not just "milk")
- Name specific fruits/vegetables (e.g., "red bell pepper" not just "pepper")

List EVERYTHING you can see: every condiment, dairy product, fruit, vegetable,
beverage, jar, container, package and any other food item.

Format: Just the item name, one per line. Nothing else.`

	formatterInstruction = `Convert extracted ingredients into recipe search parameters.
Focus on main cooking ingredients, limit to 10-15 most versatile items.
Answer with JSON: {"ingredients": "comma-separated list"}.`

	queryExtractorInstruction = `Extract recipe search parameters from the user's natural language query.
Parse time expressions like 'less than an hour' to minutes (60).
Extract specific ingredients mentioned.
Identify the main dish being searched for.

Examples:
- "gluten-free pasta under 30 minutes" -> intolerances: "gluten", maxReadyTime: 30, query: "pasta"
- "healthy vegetarian dinner without nuts" -> excludeIngredients: "nuts", query: "vegetarian dinner"
- "quick Italian dishes" -> cuisine: "italian", query: "quick dishes"`

	qaInstruction = `You are a helpful cooking assistant. Answer the user's question clearly and concisely.
If the question is not about cooking, politely say you can only answer cooking-related questions.`

	classifierPrompt = `Classify the following user query as one of: 'fridge_image', 'recipe_search', 'general_qa'.
If the query is about uploading or analyzing a fridge image, return 'fridge_image'.
If it's about searching for a recipe, return 'recipe_search'.
If it's a general cooking question, return 'general_qa'.
Only return one of these three labels.
Query: %s`
)

// GeminiService talks to the Gemini generateContent REST API. It backs every
// language and vision step of the chat workflows.
type GeminiService struct {
	apiKey      string
	apiURL      string
	visionModel string
	textModel   string
	client      *http.Client
	logger      *zap.SugaredLogger
}

// NewGeminiService creates a new GeminiService instance
func NewGeminiService(cfg *config.Config, logger *zap.SugaredLogger) (*GeminiService, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	return &GeminiService{
		apiKey:      cfg.GeminiAPIKey,
		apiURL:      strings.TrimRight(cfg.GeminiAPIURL, "/"),
		visionModel: cfg.GeminiVisionModel,
		textModel:   cfg.GeminiTextModel,
		client:      &http.Client{Timeout: 90 * time.Second},
		logger:      logger.Named("gemini"),
	}, nil
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      *float64       `json:"temperature,omitempty"`
	ResponseMIMEType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type geminiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Reason string `json:"reason"`
		} `json:"details"`
	} `json:"error"`
}

// ExtractIngredients sends a fridge photo to the vision model and returns the
// ordered list of items it recognised.
func (s *GeminiService) ExtractIngredients(ctx context.Context, img *types.Image) ([]string, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, ErrNoImage
	}

	req := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: fridgePrompt},
				{InlineData: &geminiInlineData{
					MIMEType: img.MIMEType,
					Data:     base64.StdEncoding.EncodeToString(img.Data),
				}},
			},
		}},
	}

	text, err := s.generate(ctx, s.visionModel, req)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze image: %w", err)
	}

	ingredients := ParseIngredientList(text)
	s.logger.Infow("extracted ingredients from image",
		"count", len(ingredients),
		"width", img.Width,
		"height", img.Height,
	)
	if len(ingredients) == 0 {
		return nil, ErrNoIngredients
	}
	return ingredients, nil
}

// FormatIngredients narrows an extracted list down to a comma-separated search
// key. Temperature is pinned to zero so the same list formats the same way.
func (s *GeminiService) FormatIngredients(ctx context.Context, ingredients []string) (string, error) {
	if len(ingredients) == 0 {
		return "", ErrNoIngredients
	}

	zero := 0.0
	req := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: formatterInstruction}}},
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: "Format these ingredients: " + strings.Join(ingredients, ", ")}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      &zero,
			ResponseMIMEType: "application/json",
			ResponseSchema: map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"ingredients": map[string]any{"type": "STRING"},
				},
				"required": []string{"ingredients"},
			},
		},
	}

	text, err := s.generate(ctx, s.textModel, req)
	if err != nil {
		return "", fmt.Errorf("failed to format ingredients: %w", err)
	}

	var out struct {
		Ingredients string `json:"ingredients"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &out); err != nil {
		return "", fmt.Errorf("%w: formatter reply: %v", ErrMalformedResponse, err)
	}
	formatted := NormalizeIngredientString(out.Ingredients)
	if formatted == "" {
		return "", fmt.Errorf("formatter returned no ingredients: %w", ErrEmptyResponse)
	}
	return formatted, nil
}

// ExtractSearchParams turns a free-text request into structured search filters
func (s *GeminiService) ExtractSearchParams(ctx context.Context, query string) (*types.RecipeSearchParams, error) {
	str := map[string]any{"type": "STRING"}
	integer := map[string]any{"type": "INTEGER"}
	req := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: queryExtractorInstruction}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: query}}}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema: map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"query":              str,
					"number":             integer,
					"cuisine":            str,
					"intolerances":       str,
					"includeIngredients": str,
					"excludeIngredients": str,
					"maxReadyTime":       integer,
				},
				"required": []string{"query"},
			},
		},
	}

	text, err := s.generate(ctx, s.textModel, req)
	if err != nil {
		return nil, fmt.Errorf("failed to extract search parameters: %w", err)
	}

	var params types.RecipeSearchParams
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &params); err != nil {
		return nil, fmt.Errorf("%w: extractor reply: %v", ErrMalformedResponse, err)
	}
	params.Normalize(query)
	s.logger.Debugw("extracted search parameters", "params", params)
	return &params, nil
}

// ClassifyIntent asks the model to label a message. The first known label in
// the reply wins; anything else is treated as a general question.
func (s *GeminiService) ClassifyIntent(ctx context.Context, query string) (types.Intent, error) {
	req := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: fmt.Sprintf(classifierPrompt, query)}},
		}},
	}

	text, err := s.generate(ctx, s.textModel, req)
	if err != nil {
		return "", fmt.Errorf("failed to classify intent: %w", err)
	}
	return MatchIntentLabel(text), nil
}

// AnswerQuestion answers a general cooking question
func (s *GeminiService) AnswerQuestion(ctx context.Context, question string) (string, error) {
	req := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: qaInstruction}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: question}}}},
	}

	text, err := s.generate(ctx, s.textModel, req)
	if err != nil {
		return "", fmt.Errorf("failed to answer question: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// generate performs one generateContent call and returns the joined text of
// the first candidate.
func (s *GeminiService) generate(ctx context.Context, model string, reqBody geminiRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", s.apiURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	s.logger.Debugw("gemini call finished", "model", model, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return "", classifyGeminiError(resp.StatusCode, body)
	}

	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if result.PromptFeedback.BlockReason != "" {
		s.logger.Warnw("gemini blocked prompt", "reason", result.PromptFeedback.BlockReason)
		return "", ErrSafetyBlocked
	}
	if len(result.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	candidate := result.Candidates[0]
	if candidate.FinishReason == "SAFETY" || candidate.FinishReason == "PROHIBITED_CONTENT" {
		s.logger.Warnw("gemini safety filter triggered", "finish_reason", candidate.FinishReason)
		return "", ErrSafetyBlocked
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func classifyGeminiError(status int, body []byte) error {
	apiErr := &APIError{Service: "gemini", StatusCode: status, Body: string(body)}

	var parsed geminiErrorBody
	_ = json.Unmarshal(body, &parsed)

	if status == http.StatusTooManyRequests || parsed.Error.Status == "RESOURCE_EXHAUSTED" {
		return fmt.Errorf("%w: %w", ErrQuotaExceeded, apiErr)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden ||
		parsed.Error.Status == "UNAUTHENTICATED" || parsed.Error.Status == "PERMISSION_DENIED" {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, apiErr)
	}
	for _, d := range parsed.Error.Details {
		if d.Reason == "API_KEY_INVALID" {
			return fmt.Errorf("%w: %w", ErrInvalidCredentials, apiErr)
		}
	}
	return apiErr
}

// stripCodeFence removes a ```json fence some models wrap JSON replies in
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
