package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/fridgechef/backend/internal/types"
)

// MockImageService stands in for image intake and the image store
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) Decode(payload string) (*types.Image, error) {
	args := m.Called(payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Image), args.Error(1)
}

func (m *MockImageService) Load(ctx context.Context, key string) (*types.Image, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Image), args.Error(1)
}

func (m *MockImageService) Store(ctx context.Context, payload string) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}
