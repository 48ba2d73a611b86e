package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantryml/recipegen/internal/model"
	"github.com/pantryml/recipegen/internal/service"
	"github.com/pantryml/recipegen/internal/types"
)

// RecipeHandler serves the recipe endpoints and orchestrates the
// generate -> shopping list -> embed -> persist workflow.
type RecipeHandler struct {
	llm       service.ILLMService
	embedding service.IEmbeddingService
	recipes   service.IRecipeService
	logger    *zap.Logger
}

// NewRecipeHandler creates a new RecipeHandler instance
func NewRecipeHandler(llm service.ILLMService, embedding service.IEmbeddingService, recipes service.IRecipeService, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		llm:       llm,
		embedding: embedding,
		recipes:   recipes,
		logger:    logger,
	}
}

// RegisterRoutes registers the recipe routes
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("/health", h.Health)
		recipes.POST("/generate", h.GenerateRecipe)
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.GET("/:id/similar", h.FindSimilarRecipes)
		recipes.DELETE("/:id", h.DeleteRecipe)
	}
}

// Health is the liveness probe for the recipe service.
func (h *RecipeHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "recipe-generator",
	})
}

// GenerateRecipe generates a recipe from a natural language prompt, builds
// its shopping list, embeds it and persists the result. A failed embedding
// call is tolerated; a failed generation or insert is not.
func (h *RecipeHandler) GenerateRecipe(c *gin.Context) {
	var req types.GenerateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	h.logger.Info("generating recipe", zap.String("prompt", req.Prompt))

	recipe, err := h.llm.GenerateRecipe(ctx, req.Prompt, req.DietaryPreferences, req.CuisineType)
	if err != nil {
		h.logger.Error("recipe generation failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to generate recipe: " + err.Error()})
		return
	}

	envelope := types.RecipeEnvelope{
		ID:           uuid.New(),
		Recipe:       *recipe,
		ShoppingList: service.BuildShoppingList(recipe),
	}

	// Missing embeddings are tolerated: the recipe is stored either way,
	// it just cannot be a similarity source until re-embedded.
	embedding := h.embedding.GenerateRecipeEmbedding(ctx, recipe.Title, recipe.Description, recipe.IngredientNames(), req.CuisineType)

	if _, err := h.recipes.Create(ctx, &envelope, req.Prompt, req.DietaryPreferences, req.CuisineType, embedding); err != nil {
		h.logger.Error("failed to persist recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save recipe"})
		return
	}

	c.JSON(http.StatusCreated, envelope)
}

// GetRecipe retrieves a stored recipe envelope by ID.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	row, err := h.recipes.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		h.logger.Error("failed to fetch recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipe"})
		return
	}

	c.JSON(http.StatusOK, row.ToEnvelope())
}

// FindSimilarRecipes returns recipes ranked by vector similarity to the
// given recipe. The source recipe itself is excluded from the results.
func (h *RecipeHandler) FindSimilarRecipes(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var query types.SimilarRecipesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	source, err := h.recipes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		h.logger.Error("failed to fetch recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipe"})
		return
	}

	if source.Embedding == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrMissingEmbedding.Error()})
		return
	}

	rows, err := h.recipes.FindSimilar(ctx, *source.Embedding, query.Limit, &id)
	if err != nil {
		h.logger.Error("similarity search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Similarity search failed"})
		return
	}

	c.JSON(http.StatusOK, toEnvelopes(rows))
}

// ListRecipes lists recent recipes, optionally filtered by a title search
// term.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var query types.ListRecipesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	var (
		rows []*model.Recipe
		err  error
	)
	if query.Search != "" {
		rows, err = h.recipes.SearchByTitle(ctx, query.Search, query.Limit)
	} else {
		rows, err = h.recipes.ListRecent(ctx, query.Limit)
	}
	if err != nil {
		h.logger.Error("failed to list recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, toEnvelopes(rows))
}

// DeleteRecipe removes a recipe by ID.
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	deleted, err := h.recipes.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return uuid.Nil, false
	}
	return id, true
}

func toEnvelopes(rows []*model.Recipe) []types.RecipeEnvelope {
	envelopes := make([]types.RecipeEnvelope, len(rows))
	for i, row := range rows {
		envelopes[i] = row.ToEnvelope()
	}
	return envelopes
}
