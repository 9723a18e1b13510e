package mocks

import (
	"context"
	"iter"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/service"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

var _ service.IRecipeService = (*MockRecipeService)(nil)

func (m *MockRecipeService) Create(ctx context.Context, in service.RecipeInput) (*model.Recipe, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) Get(ctx context.Context, id uint) (*model.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) List(ctx context.Context, opts service.ListOptions) ([]model.Recipe, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

// Iterate yields the []model.Recipe configured as the first return value,
// followed by the configured error if there is one.
func (m *MockRecipeService) Iterate(ctx context.Context, opts service.ListOptions) iter.Seq2[*model.Recipe, error] {
	args := m.Called(ctx, opts)
	var recipes []model.Recipe
	if args.Get(0) != nil {
		recipes = args.Get(0).([]model.Recipe)
	}
	err := args.Error(1)
	return func(yield func(*model.Recipe, error) bool) {
		for i := range recipes {
			if !yield(&recipes[i], nil) {
				return
			}
		}
		if err != nil {
			yield(nil, err)
		}
	}
}

func (m *MockRecipeService) Count(ctx context.Context, opts service.ListOptions) (int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecipeService) Update(ctx context.Context, id uint, patch service.RecipePatch) (*model.Recipe, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) SetImage(ctx context.Context, id uint, ref string) (*model.Recipe, error) {
	args := m.Called(ctx, id, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
