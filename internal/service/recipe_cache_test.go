package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantryml/recipegen/internal/testhelpers"
)

func newCachedRecipeService(t *testing.T) *RecipeService {
	return NewRecipeService(testhelpers.SetupSQLiteDatabase(t), testhelpers.SetupTestRedis(t), zap.NewNop())
}

func TestRecipeServiceCacheHitPreservesEmbedding(t *testing.T) {
	svc := newCachedRecipeService(t)
	ctx := context.Background()

	envelope := testEnvelope("Cached Curry")
	_, err := svc.Create(ctx, envelope, "prompt", nil, nil, vec(1, 0, 0))
	require.NoError(t, err)

	// Remove the row behind the cache's back; a hit must serve it anyway,
	// embedding included, so cached rows stay usable as similarity sources.
	require.NoError(t, svc.db.Exec("DELETE FROM recipes").Error)

	fetched, err := svc.GetByID(ctx, envelope.ID)
	require.NoError(t, err)
	assert.Equal(t, envelope.ID, fetched.ID)
	assert.Equal(t, envelope.Recipe, fetched.ToRecipe())
	assert.Equal(t, envelope.ShoppingList, map[string][]string(fetched.ShoppingList))
	require.NotNil(t, fetched.Embedding)
	assert.Equal(t, []float32{1, 0, 0}, fetched.Embedding.Slice())
}

func TestRecipeServiceGetByIDPopulatesCache(t *testing.T) {
	svc := newCachedRecipeService(t)
	ctx := context.Background()

	envelope := testEnvelope("Read Through")
	_, err := svc.Create(ctx, envelope, "prompt", nil, nil, vec(0, 1, 0))
	require.NoError(t, err)

	// Drop the entry written by Create so the next read must go to the
	// database and re-prime the cache.
	require.NoError(t, svc.redis.FlushAll(ctx).Err())

	_, err = svc.GetByID(ctx, envelope.ID)
	require.NoError(t, err)

	require.NoError(t, svc.db.Exec("DELETE FROM recipes").Error)

	fetched, err := svc.GetByID(ctx, envelope.ID)
	require.NoError(t, err)
	assert.Equal(t, envelope.Recipe, fetched.ToRecipe())
}

func TestRecipeServiceDeleteInvalidatesCache(t *testing.T) {
	svc := newCachedRecipeService(t)
	ctx := context.Background()

	envelope := testEnvelope("Short Lived")
	_, err := svc.Create(ctx, envelope, "prompt", nil, nil, nil)
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, envelope.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// The cached copy must not outlive the row.
	_, err = svc.GetByID(ctx, envelope.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRecipeServiceCorruptCacheEntryFallsThroughToDatabase(t *testing.T) {
	svc := newCachedRecipeService(t)
	ctx := context.Background()

	envelope := testEnvelope("Sturdy Stew")
	_, err := svc.Create(ctx, envelope, "prompt", nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.redis.Set(ctx, svc.cacheKey(envelope.ID), "not json", time.Minute).Err())

	fetched, err := svc.GetByID(ctx, envelope.ID)
	require.NoError(t, err)
	assert.Equal(t, envelope.Recipe, fetched.ToRecipe())
}

func TestRecipeServiceUnreachableCacheFallsThroughToDatabase(t *testing.T) {
	broken := redis.NewClient(&redis.Options{
		Addr:         "127.0.0.1:1",
		DialTimeout:  50 * time.Millisecond,
		ReadTimeout:  50 * time.Millisecond,
		WriteTimeout: 50 * time.Millisecond,
		MaxRetries:   -1,
	})
	t.Cleanup(func() { _ = broken.Close() })

	svc := NewRecipeService(testhelpers.SetupSQLiteDatabase(t), broken, zap.NewNop())
	ctx := context.Background()

	envelope := testEnvelope("Resilient Ragu")
	_, err := svc.Create(ctx, envelope, "prompt", nil, nil, vec(1, 0, 0))
	require.NoError(t, err)

	fetched, err := svc.GetByID(ctx, envelope.ID)
	require.NoError(t, err)
	assert.Equal(t, envelope.Recipe, fetched.ToRecipe())

	deleted, err := svc.Delete(ctx, envelope.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}
