package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"github.com/pageza/fridgechef/backend/internal/mocks"
	"github.com/pageza/fridgechef/backend/internal/service"
	"github.com/pageza/fridgechef/backend/internal/types"
	"github.com/pageza/fridgechef/backend/internal/workflow"
)

type fixture struct {
	gemini  *mocks.MockGemini
	recipes *mocks.MockRecipeSearcher
	images  *mocks.MockImageService
	spans   *tracetest.SpanRecorder
	router  *workflow.Router
}

func newFixture(t *testing.T, withClassifier bool) *fixture {
	t.Helper()
	f := &fixture{
		gemini:  new(mocks.MockGemini),
		recipes: new(mocks.MockRecipeSearcher),
		images:  new(mocks.MockImageService),
		spans:   tracetest.NewSpanRecorder(),
	}
	svc := workflow.Services{
		Vision:   f.gemini,
		Language: f.gemini,
		Recipes:  f.recipes,
		Images:   f.images,
	}
	if withClassifier {
		svc.Classifier = f.gemini
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(f.spans))
	f.router = workflow.NewRouter(svc, zap.NewNop().Sugar(), workflow.WithTracerProvider(tp))
	t.Cleanup(func() {
		f.gemini.AssertExpectations(t)
		f.recipes.AssertExpectations(t)
		f.images.AssertExpectations(t)
	})
	return f
}

func (f *fixture) route(t *testing.T, req *types.ChatRequest) []workflow.Event {
	t.Helper()
	rec := &workflow.Recorder{}
	require.NoError(t, f.router.Route(context.Background(), req, rec))
	return rec.Events()
}

func count(n int) *int { return &n }

func recipe(id int, title string) types.RecipeDetails {
	return types.RecipeDetails{ID: id, Title: title}
}

var testImage = &types.Image{Data: []byte{0xff, 0xd8}, MIMEType: "image/jpeg", Width: 10, Height: 10}

func assertSingleTerminal(t *testing.T, events []workflow.Event) {
	t.Helper()
	terminals := 0
	for i, ev := range events {
		if ev.IsTerminal() {
			terminals++
			assert.Equal(t, len(events)-1, i, "terminal event must be last")
		}
	}
	assert.Equal(t, 1, terminals)
}

func TestRouteWelcome(t *testing.T) {
	f := newFixture(t, true)

	events := f.route(t, &types.ChatRequest{Message: "   "})

	require.Len(t, events, 1)
	assert.Equal(t, workflow.EventComplete, events[0].Type)
	assert.Equal(t, workflow.WelcomeMessage, events[0].Message)
	assert.Empty(t, events[0].Recipes)
}

func TestImageWorkflowHappyPath(t *testing.T) {
	f := newFixture(t, true)
	extracted := []string{"chicken breast", "jasmine rice", "garlic", "whole milk", "Heinz ketchup"}

	f.images.On("Decode", "aGVsbG8=").Return(testImage, nil)
	f.gemini.On("ExtractIngredients", mock.Anything, testImage).Return(extracted, nil)
	f.gemini.On("FormatIngredients", mock.Anything, extracted).Return("chicken, rice, garlic", nil)
	f.recipes.On("SearchByIngredients", mock.Anything, "chicken, rice, garlic").Return([]types.IngredientMatch{
		{ID: 1, UsedIngredientCount: 1, MissedIngredientCount: 4},
		{ID: 2, UsedIngredientCount: 3, MissedIngredientCount: 2},
		{ID: 3, UsedIngredientCount: 3, MissedIngredientCount: 0},
	}, nil)
	f.recipes.On("GetRecipeDetailsBulk", mock.Anything, []int{1, 2, 3}).Return([]types.RecipeDetails{
		recipe(1, "Fried rice"), recipe(2, "Garlic chicken"), recipe(3, "Chicken rice bowl"),
	}, nil)

	events := f.route(t, &types.ChatRequest{ImageBase64: "aGVsbG8=", Message: "ignored"})

	require.Len(t, events, 8)
	assertSingleTerminal(t, events)

	steps := []string{
		workflow.StepAnalyzeImage, workflow.StepFormatIngredients,
		workflow.StepSearchRecipes, workflow.StepGetDetails,
	}
	for i, name := range steps {
		started := events[2*i]
		assert.Equal(t, workflow.StatusInProgress, started.Status)
		assert.Equal(t, name, started.Step)
		if i < 3 {
			finished := events[2*i+1]
			assert.Equal(t, workflow.StatusComplete, finished.Status)
			assert.Equal(t, name, finished.Step)
		}
	}
	assert.Equal(t, "Found 5 ingredients", events[1].Message)
	assert.Equal(t, extracted, events[1].Data.Ingredients)
	assert.Equal(t, "chicken, rice, garlic", events[3].Summary.IngredientsUsedForSearch)
	assert.Equal(t, count(3), events[5].Data.RecipeCount)

	final := events[7]
	assert.Equal(t, workflow.EventComplete, final.Type)
	assert.Equal(t, "Found 3 delicious recipes you can make with your ingredients!", final.Message)
	require.Len(t, final.Recipes, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{final.Recipes[0].ID, final.Recipes[1].ID, final.Recipes[2].ID})
	assert.Equal(t, count(5), final.Summary.TotalIngredientsFound)
	assert.Equal(t, count(3), final.Summary.TotalRecipes)
	assert.Equal(t, "chicken, rice, garlic", final.Summary.IngredientsUsedForSearch)

	var names []string
	for _, s := range f.spans.Ended() {
		names = append(names, s.Name())
	}
	assert.Contains(t, names, "workflow.route")
	assert.Contains(t, names, "workflow.step.analyze_image")
	assert.Contains(t, names, "workflow.step.get_details")
}

func TestImageWorkflowNoCandidates(t *testing.T) {
	f := newFixture(t, true)

	f.images.On("Decode", "aGVsbG8=").Return(testImage, nil)
	f.gemini.On("ExtractIngredients", mock.Anything, testImage).Return([]string{"mustard"}, nil)
	f.gemini.On("FormatIngredients", mock.Anything, []string{"mustard"}).Return("mustard", nil)
	f.recipes.On("SearchByIngredients", mock.Anything, "mustard").Return([]types.IngredientMatch{}, nil)

	events := f.route(t, &types.ChatRequest{ImageBase64: "aGVsbG8="})

	require.Len(t, events, 6)
	final := events[5]
	assert.Equal(t, workflow.EventComplete, final.Type)
	assert.Equal(t, workflow.NoIngredientMatchMessage, final.Message)
	assert.Empty(t, final.Recipes)
	f.recipes.AssertNotCalled(t, "GetRecipeDetailsBulk", mock.Anything, mock.Anything)
}

func TestImageWorkflowVisionQuota(t *testing.T) {
	f := newFixture(t, true)

	f.images.On("Decode", "aGVsbG8=").Return(testImage, nil)
	f.gemini.On("ExtractIngredients", mock.Anything, testImage).
		Return(nil, fmt.Errorf("failed to analyze image: %w", service.ErrQuotaExceeded))

	events := f.route(t, &types.ChatRequest{ImageBase64: "aGVsbG8="})

	require.Len(t, events, 2)
	assert.Equal(t, workflow.StatusInProgress, events[0].Status)
	assert.Equal(t, workflow.EventError, events[1].Type)
	assert.Equal(t, workflow.StepAnalyzeImage, events[1].Step)
	assert.Equal(t, "Image analysis quota exceeded. Please try again later.", events[1].Message)
	f.gemini.AssertNotCalled(t, "FormatIngredients", mock.Anything, mock.Anything)
}

func TestImageWorkflowStepFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture)
		step    string
		message string
	}{
		{
			name: "undecodable payload",
			setup: func(f *fixture) {
				f.images.On("Decode", "aGVsbG8=").Return(nil, service.ErrInvalidImageEncoding)
			},
			step:    workflow.StepAnalyzeImage,
			message: "Invalid image format. Please ensure the image is properly encoded.",
		},
		{
			name: "no ingredients recognised",
			setup: func(f *fixture) {
				f.images.On("Decode", "aGVsbG8=").Return(testImage, nil)
				f.gemini.On("ExtractIngredients", mock.Anything, testImage).Return(nil, service.ErrNoIngredients)
			},
			step:    workflow.StepAnalyzeImage,
			message: "No ingredients could be identified in the image. Please ensure the image clearly shows the contents of your fridge.",
		},
		{
			name: "formatter fails",
			setup: func(f *fixture) {
				f.images.On("Decode", "aGVsbG8=").Return(testImage, nil)
				f.gemini.On("ExtractIngredients", mock.Anything, testImage).Return([]string{"eggs"}, nil)
				f.gemini.On("FormatIngredients", mock.Anything, []string{"eggs"}).Return("", service.ErrEmptyResponse)
			},
			step:    workflow.StepFormatIngredients,
			message: "Failed to format ingredients. Please try again.",
		},
		{
			name: "search credentials rejected",
			setup: func(f *fixture) {
				f.images.On("Decode", "aGVsbG8=").Return(testImage, nil)
				f.gemini.On("ExtractIngredients", mock.Anything, testImage).Return([]string{"eggs"}, nil)
				f.gemini.On("FormatIngredients", mock.Anything, []string{"eggs"}).Return("eggs", nil)
				f.recipes.On("SearchByIngredients", mock.Anything, "eggs").
					Return(nil, fmt.Errorf("%w: %w", service.ErrInvalidCredentials, &service.APIError{Service: "spoonacular", StatusCode: 401}))
			},
			step:    workflow.StepSearchRecipes,
			message: "Invalid API configuration. Please contact support.",
		},
		{
			name: "detail fetch fails",
			setup: func(f *fixture) {
				f.images.On("Decode", "aGVsbG8=").Return(testImage, nil)
				f.gemini.On("ExtractIngredients", mock.Anything, testImage).Return([]string{"eggs"}, nil)
				f.gemini.On("FormatIngredients", mock.Anything, []string{"eggs"}).Return("eggs", nil)
				f.recipes.On("SearchByIngredients", mock.Anything, "eggs").Return([]types.IngredientMatch{{ID: 9}}, nil)
				f.recipes.On("GetRecipeDetailsBulk", mock.Anything, []int{9}).
					Return(nil, &service.APIError{Service: "spoonacular", StatusCode: 500})
			},
			step:    workflow.StepGetDetails,
			message: "The recipe service is unavailable right now. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			tt.setup(f)

			events := f.route(t, &types.ChatRequest{ImageBase64: "aGVsbG8="})

			assertSingleTerminal(t, events)
			assert.LessOrEqual(t, len(events)-1, 8)
			last := events[len(events)-1]
			assert.Equal(t, workflow.EventError, last.Type)
			assert.Equal(t, tt.step, last.Step)
			assert.Equal(t, tt.message, last.Message)
		})
	}
}

func TestImageWorkflowStoredImage(t *testing.T) {
	f := newFixture(t, true)

	f.images.On("Load", mock.Anything, "fridge-images/abc").Return(nil, service.ErrImageNotFound)

	events := f.route(t, &types.ChatRequest{ImageKey: " fridge-images/abc "})

	require.Len(t, events, 2)
	assert.Equal(t, workflow.EventError, events[1].Type)
	assert.Equal(t, "The uploaded image could not be found. Please upload it again.", events[1].Message)
}

func TestQueryWorkflow(t *testing.T) {
	f := newFixture(t, true)
	query := "gluten-free pasta under 30 minutes"
	params := &types.RecipeSearchParams{Query: "pasta", Intolerances: "gluten", MaxReadyTime: 30}

	f.gemini.On("ClassifyIntent", mock.Anything, query).Return(types.IntentRecipeSearch, nil)
	f.gemini.On("ExtractSearchParams", mock.Anything, query).Return(params, nil)
	f.recipes.On("ComplexSearch", mock.Anything, mock.MatchedBy(func(p *types.RecipeSearchParams) bool {
		return p.Query == "pasta" && p.Intolerances == "gluten" && p.MaxReadyTime == 30 && p.Number == types.DefaultResultCount
	})).Return([]types.RecipeDetails{recipe(1, "Rice pasta"), recipe(2, "Zucchini noodles")}, nil)

	events := f.route(t, &types.ChatRequest{Message: query})

	require.Len(t, events, 1)
	final := events[0]
	assert.Equal(t, workflow.EventComplete, final.Type)
	assert.Equal(t, "Found 2 recipes matching 'pasta' | ready in 30 min or less", final.Message)
	assert.Len(t, final.Recipes, 2)
	assert.Equal(t, query, final.Summary.Query)
	assert.Equal(t, count(2), final.Summary.TotalRecipes)
}

func TestQueryWorkflowNoResults(t *testing.T) {
	f := newFixture(t, false)
	query := "how to make unicorn stew"

	f.gemini.On("ExtractSearchParams", mock.Anything, query).Return(&types.RecipeSearchParams{Query: "unicorn stew"}, nil)
	f.recipes.On("ComplexSearch", mock.Anything, mock.Anything).Return([]types.RecipeDetails{}, nil)

	events := f.route(t, &types.ChatRequest{Message: query})

	require.Len(t, events, 1)
	assert.Equal(t, workflow.EventComplete, events[0].Type)
	assert.Equal(t, "No recipes found matching 'unicorn stew'. Try a broader search.", events[0].Message)
	assert.Empty(t, events[0].Recipes)
}

func TestQueryWorkflowExtractionFails(t *testing.T) {
	f := newFixture(t, false)
	query := "recipe for something"

	f.gemini.On("ExtractSearchParams", mock.Anything, query).Return(nil, service.ErrMalformedResponse)

	events := f.route(t, &types.ChatRequest{Message: query})

	require.Len(t, events, 1)
	assert.Equal(t, workflow.EventError, events[0].Type)
	assert.Equal(t, workflow.StepExtractParameters, events[0].Step)
	f.recipes.AssertNotCalled(t, "ComplexSearch", mock.Anything, mock.Anything)
}

func TestClassifierFailureFallsBackToKeywords(t *testing.T) {
	f := newFixture(t, true)
	query := "How do I cook salmon?"

	f.gemini.On("ClassifyIntent", mock.Anything, query).Return(types.Intent(""), errors.New("unavailable"))
	f.gemini.On("ExtractSearchParams", mock.Anything, query).Return(&types.RecipeSearchParams{Query: "salmon"}, nil)
	f.recipes.On("ComplexSearch", mock.Anything, mock.Anything).Return([]types.RecipeDetails{recipe(5, "Baked salmon")}, nil)

	events := f.route(t, &types.ChatRequest{Message: query})

	require.Len(t, events, 1)
	assert.Equal(t, "Found 1 recipes matching 'salmon'", events[0].Message)
}

func TestGeneralQuestion(t *testing.T) {
	f := newFixture(t, true)
	query := "what is a roux?"

	f.gemini.On("ClassifyIntent", mock.Anything, query).Return(types.IntentGeneralQA, nil)
	f.gemini.On("AnswerQuestion", mock.Anything, query).Return("A roux is flour cooked in fat.", nil)

	events := f.route(t, &types.ChatRequest{Message: query})

	require.Len(t, events, 1)
	assert.Equal(t, workflow.EventComplete, events[0].Type)
	assert.Equal(t, "A roux is flour cooked in fat.", events[0].Message)
	assert.Empty(t, events[0].Recipes)
}

func TestFridgeIntentWithoutImage(t *testing.T) {
	f := newFixture(t, true)
	query := "check out my fridge"

	f.gemini.On("ClassifyIntent", mock.Anything, query).Return(types.IntentFridgeImage, nil)

	events := f.route(t, &types.ChatRequest{Message: query})

	require.Len(t, events, 1)
	assert.Equal(t, workflow.EventError, events[0].Type)
	assert.Equal(t, workflow.StepAnalyzeImage, events[0].Step)
	assert.Equal(t, workflow.NoImageMessage, events[0].Message)
}

func TestRouteStopsOnCancelledContext(t *testing.T) {
	f := newFixture(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &workflow.Recorder{}
	err := f.router.Route(ctx, &types.ChatRequest{ImageBase64: "aGVsbG8="}, rec)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.Events())
}

func TestRouteCancelledMidStep(t *testing.T) {
	f := newFixture(t, true)
	ctx, cancel := context.WithCancel(context.Background())

	f.images.On("Decode", "aGVsbG8=").Return(testImage, nil)
	f.gemini.On("ExtractIngredients", mock.Anything, testImage).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled)

	rec := &workflow.Recorder{}
	err := f.router.Route(ctx, &types.ChatRequest{ImageBase64: "aGVsbG8="}, rec)

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, rec.Events(), 1)
	assert.Equal(t, workflow.StatusInProgress, rec.Last().Status)
}

func TestRouteRecoversPanics(t *testing.T) {
	f := newFixture(t, true)

	f.images.On("Decode", "aGVsbG8=").Return(testImage, nil)
	f.gemini.On("ExtractIngredients", mock.Anything, testImage).
		Run(func(mock.Arguments) { panic("boom") })

	events := f.route(t, &types.ChatRequest{ImageBase64: "aGVsbG8="})

	require.Len(t, events, 2)
	assert.Equal(t, workflow.EventError, events[1].Type)
	assert.Equal(t, workflow.UnexpectedErrorMessage, events[1].Message)
}

func TestClassifyByKeywords(t *testing.T) {
	assert.Equal(t, types.IntentRecipeSearch, workflow.ClassifyByKeywords("Any RECIPE with tofu?"))
	assert.Equal(t, types.IntentRecipeSearch, workflow.ClassifyByKeywords("ingredients for lasagna"))
	assert.Equal(t, types.IntentGeneralQA, workflow.ClassifyByKeywords("is butter dairy?"))
}
