package mocks

import (
	"context"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/mock"

	"github.com/pantryml/recipegen/internal/model"
	"github.com/pantryml/recipegen/internal/types"
)

// MockLLMService is a mock implementation of the LLM service
type MockLLMService struct {
	mock.Mock
}

func (m *MockLLMService) GenerateRecipe(ctx context.Context, prompt string, dietaryPrefs []string, cuisineType *string) (*types.Recipe, error) {
	args := m.Called(ctx, prompt, dietaryPrefs, cuisineType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Recipe), args.Error(1)
}

// MockEmbeddingService is a mock implementation of the embedding service
type MockEmbeddingService struct {
	mock.Mock
}

func (m *MockEmbeddingService) GenerateEmbedding(ctx context.Context, text string) *pgvector.Vector {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*pgvector.Vector)
}

func (m *MockEmbeddingService) GenerateRecipeEmbedding(ctx context.Context, title, description string, ingredientNames []string, cuisineType *string) *pgvector.Vector {
	args := m.Called(ctx, title, description, ingredientNames, cuisineType)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*pgvector.Vector)
}

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) Create(ctx context.Context, envelope *types.RecipeEnvelope, originalPrompt string, dietaryPrefs []string, cuisineType *string, embedding *pgvector.Vector) (*model.Recipe, error) {
	args := m.Called(ctx, envelope, originalPrompt, dietaryPrefs, cuisineType, embedding)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) GetByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) FindSimilar(ctx context.Context, embedding pgvector.Vector, limit int, excludeID *uuid.UUID) ([]*model.Recipe, error) {
	args := m.Called(ctx, embedding, limit, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) SearchByTitle(ctx context.Context, term string, limit int) ([]*model.Recipe, error) {
	args := m.Called(ctx, term, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) ListRecent(ctx context.Context, limit int) ([]*model.Recipe, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
