package service

import (
	"context"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pantryml/recipegen/internal/model"
	"github.com/pantryml/recipegen/internal/types"
)

// ILLMService defines the interface for recipe generation
type ILLMService interface {
	GenerateRecipe(ctx context.Context, prompt string, dietaryPrefs []string, cuisineType *string) (*types.Recipe, error)
}

// IEmbeddingService defines the interface for embedding generation.
// Implementations never return an error: a nil vector means the embedding
// service was unavailable and the caller proceeds without one.
type IEmbeddingService interface {
	GenerateEmbedding(ctx context.Context, text string) *pgvector.Vector
	GenerateRecipeEmbedding(ctx context.Context, title, description string, ingredientNames []string, cuisineType *string) *pgvector.Vector
}

// IRecipeService defines the interface for recipe persistence operations
type IRecipeService interface {
	Create(ctx context.Context, envelope *types.RecipeEnvelope, originalPrompt string, dietaryPrefs []string, cuisineType *string, embedding *pgvector.Vector) (*model.Recipe, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	FindSimilar(ctx context.Context, embedding pgvector.Vector, limit int, excludeID *uuid.UUID) ([]*model.Recipe, error)
	SearchByTitle(ctx context.Context, term string, limit int) ([]*model.Recipe, error)
	ListRecent(ctx context.Context, limit int) ([]*model.Recipe, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
