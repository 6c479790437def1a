package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/fridgechef/backend/internal/types"
)

// MockGemini stands in for the vision and language model client
type MockGemini struct {
	mock.Mock
}

func (m *MockGemini) ExtractIngredients(ctx context.Context, img *types.Image) ([]string, error) {
	args := m.Called(ctx, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGemini) FormatIngredients(ctx context.Context, ingredients []string) (string, error) {
	args := m.Called(ctx, ingredients)
	return args.String(0), args.Error(1)
}

func (m *MockGemini) ExtractSearchParams(ctx context.Context, query string) (*types.RecipeSearchParams, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeSearchParams), args.Error(1)
}

func (m *MockGemini) ClassifyIntent(ctx context.Context, query string) (types.Intent, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(types.Intent), args.Error(1)
}

func (m *MockGemini) AnswerQuestion(ctx context.Context, question string) (string, error) {
	args := m.Called(ctx, question)
	return args.String(0), args.Error(1)
}
