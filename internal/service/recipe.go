package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pantryml/recipegen/internal/model"
	"github.com/pantryml/recipegen/internal/types"
)

const cacheTTL = 24 * time.Hour

// RecipeService owns the persisted recipe rows. A nil redis client disables
// the read-through row cache; cache failures always degrade to the database.
type RecipeService struct {
	db     *gorm.DB
	redis  *redis.Client
	logger *zap.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) *RecipeService {
	return &RecipeService{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}
}

// cachedRecipe re-exposes the embedding, which the model hides from API
// responses, so cached rows survive the round-trip intact.
type cachedRecipe struct {
	model.Recipe
	Embedding *pgvector.Vector `json:"embedding"`
}

// Create inserts one recipe row. The identifier comes pre-assigned on the
// envelope so the caller can return it to the client synchronously.
func (s *RecipeService) Create(ctx context.Context, envelope *types.RecipeEnvelope, originalPrompt string, dietaryPrefs []string, cuisineType *string, embedding *pgvector.Vector) (*model.Recipe, error) {
	recipe := envelope.Recipe

	row := &model.Recipe{
		ID:                 envelope.ID,
		Title:              recipe.Title,
		Description:        recipe.Description,
		Servings:           recipe.Servings,
		PrepTimeMinutes:    recipe.PrepTimeMinutes,
		CookTimeMinutes:    recipe.CookTimeMinutes,
		Ingredients:        model.JSONBIngredients(recipe.Ingredients),
		Instructions:       model.JSONBInstructions(recipe.Instructions),
		ShoppingList:       model.JSONBShoppingList(envelope.ShoppingList),
		OriginalPrompt:     originalPrompt,
		DietaryPreferences: model.JSONBStringArray(dietaryPrefs),
		CuisineType:        cuisineType,
		Embedding:          embedding,
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	s.logger.Info("created recipe",
		zap.String("id", row.ID.String()),
		zap.String("title", row.Title),
		zap.Bool("has_embedding", row.Embedding != nil))

	s.cacheSet(ctx, row)
	return row, nil
}

// GetByID is a point lookup by primary key. Returns gorm.ErrRecordNotFound
// when the identifier is absent.
func (s *RecipeService) GetByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	if row := s.cacheGet(ctx, id); row != nil {
		return row, nil
	}

	var row model.Recipe
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}

	s.cacheSet(ctx, &row)
	return &row, nil
}

// FindSimilar returns up to limit recipes ordered by ascending cosine
// distance to the given embedding, skipping rows without an embedding and
// optionally one excluded identifier. Ties on distance break by id so
// results are reproducible.
func (s *RecipeService) FindSimilar(ctx context.Context, embedding pgvector.Vector, limit int, excludeID *uuid.UUID) ([]*model.Recipe, error) {
	if s.db.Dialector.Name() != "postgres" {
		return s.findSimilarFallback(ctx, embedding, limit, excludeID)
	}

	query := s.db.WithContext(ctx).
		Where("embedding IS NOT NULL").
		Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <=> ?, id", Vars: []interface{}{embedding}},
		}).
		Limit(limit)

	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var rows []model.Recipe
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	s.logger.Debug("similarity search", zap.Int("results", len(rows)))
	return toPointers(rows), nil
}

// findSimilarFallback ranks rows in process for dialects without a vector
// distance operator (sqlite in unit tests).
func (s *RecipeService) findSimilarFallback(ctx context.Context, embedding pgvector.Vector, limit int, excludeID *uuid.UUID) ([]*model.Recipe, error) {
	query := s.db.WithContext(ctx).Where("embedding IS NOT NULL")
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var rows []model.Recipe
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	target := embedding.Slice()
	sort.SliceStable(rows, func(i, j int) bool {
		di := cosineDistance(target, rows[i].Embedding.Slice())
		dj := cosineDistance(target, rows[j].Embedding.Slice())
		if di != dj {
			return di < dj
		}
		return rows[i].ID.String() < rows[j].ID.String()
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return toPointers(rows), nil
}

// SearchByTitle matches the term case-insensitively against titles, newest
// first.
func (s *RecipeService) SearchByTitle(ctx context.Context, term string, limit int) ([]*model.Recipe, error) {
	query := s.db.WithContext(ctx)
	if query.Dialector.Name() == "postgres" {
		query = query.Where("title ILIKE ?", "%"+term+"%")
	} else {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(term)+"%")
	}

	var rows []model.Recipe
	if err := query.Order("created_at DESC, id").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("title search failed: %w", err)
	}
	return toPointers(rows), nil
}

// ListRecent returns the most recently created recipes.
func (s *RecipeService) ListRecent(ctx context.Context, limit int) ([]*model.Recipe, error) {
	var rows []model.Recipe
	if err := s.db.WithContext(ctx).Order("created_at DESC, id").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return toPointers(rows), nil
}

// Delete removes a recipe row. Returns whether a row was actually removed;
// deleting an unknown identifier reports false without error.
func (s *RecipeService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := s.db.WithContext(ctx).Delete(&model.Recipe{}, "id = ?", id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete recipe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	s.cacheDelete(ctx, id)
	s.logger.Info("deleted recipe", zap.String("id", id.String()))
	return true, nil
}

func (s *RecipeService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("recipe:%s", id)
}

func (s *RecipeService) cacheSet(ctx context.Context, row *model.Recipe) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(cachedRecipe{Recipe: *row, Embedding: row.Embedding})
	if err != nil {
		s.logger.Warn("failed to marshal recipe for cache", zap.Error(err))
		return
	}
	if err := s.redis.Set(ctx, s.cacheKey(row.ID), data, cacheTTL).Err(); err != nil {
		s.logger.Warn("failed to cache recipe", zap.Error(err))
	}
}

func (s *RecipeService) cacheGet(ctx context.Context, id uuid.UUID) *model.Recipe {
	if s.redis == nil {
		return nil
	}

	data, err := s.redis.Get(ctx, s.cacheKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("recipe cache read failed", zap.Error(err))
		}
		return nil
	}

	var cached cachedRecipe
	if err := json.Unmarshal(data, &cached); err != nil {
		s.logger.Warn("failed to unmarshal cached recipe", zap.Error(err))
		return nil
	}

	row := cached.Recipe
	row.Embedding = cached.Embedding
	return &row
}

func (s *RecipeService) cacheDelete(ctx context.Context, id uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, s.cacheKey(id)).Err(); err != nil {
		s.logger.Warn("failed to invalidate recipe cache", zap.Error(err))
	}
}

func toPointers(rows []model.Recipe) []*model.Recipe {
	result := make([]*model.Recipe, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result
}

// cosineDistance is 1 - cosine similarity, matching pgvector's <=> operator.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.MaxFloat64
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return math.MaxFloat64
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
