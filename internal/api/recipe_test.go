package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantryml/recipegen/internal/mocks"
	"github.com/pantryml/recipegen/internal/model"
	"github.com/pantryml/recipegen/internal/types"
)

type handlerMocks struct {
	llm       *mocks.MockLLMService
	embedding *mocks.MockEmbeddingService
	recipes   *mocks.MockRecipeService
}

func setupRecipeTestRouter(t *testing.T) (*gin.Engine, *handlerMocks) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := &handlerMocks{
		llm:       &mocks.MockLLMService{},
		embedding: &mocks.MockEmbeddingService{},
		recipes:   &mocks.MockRecipeService{},
	}

	handler := NewRecipeHandler(m.llm, m.embedding, m.recipes, zap.NewNop())

	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router, m
}

func testRecipe() *types.Recipe {
	return &types.Recipe{
		Title:            "Lemon Herb Chicken",
		Description:      "Bright, zesty roast chicken.",
		Servings:         4,
		PrepTimeMinutes:  15,
		CookTimeMinutes:  35,
		TotalTimeMinutes: 50,
		Ingredients: []types.Ingredient{
			{Name: "chicken breasts", Amount: 4, Unit: "pieces", Aisle: "Meat & Poultry"},
			{Name: "lemons", Amount: 2, Unit: "whole", Aisle: "Produce"},
		},
		Instructions: []types.Instruction{
			{Step: 1, Description: "Season the chicken.", IngredientsUsed: []string{"chicken breasts"}},
			{Step: 2, Description: "Roast with lemon.", IngredientsUsed: []string{"chicken breasts", "lemons"}},
		},
	}
}

func testRow(embedding *pgvector.Vector) *model.Recipe {
	recipe := testRecipe()
	return &model.Recipe{
		ID:              uuid.New(),
		Title:           recipe.Title,
		Description:     recipe.Description,
		Servings:        recipe.Servings,
		PrepTimeMinutes: recipe.PrepTimeMinutes,
		CookTimeMinutes: recipe.CookTimeMinutes,
		Ingredients:     model.JSONBIngredients(recipe.Ingredients),
		Instructions:    model.JSONBInstructions(recipe.Instructions),
		ShoppingList: model.JSONBShoppingList{
			"Meat & Poultry": {"4 pieces chicken breasts"},
			"Produce":        {"2 whole lemons"},
		},
		OriginalPrompt: "healthy chicken dinner for 4",
		Embedding:      embedding,
	}
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupRecipeTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/recipes/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "recipe-generator", body["service"])
}

func TestGenerateRecipeEndpoint(t *testing.T) {
	router, m := setupRecipeTestRouter(t)

	recipe := testRecipe()
	embedding := pgvector.NewVector([]float32{0.1, 0.2})

	m.llm.On("GenerateRecipe", mock.Anything, "healthy chicken dinner for 4", []string{"gluten-free"}, (*string)(nil)).
		Return(recipe, nil)
	m.embedding.On("GenerateRecipeEmbedding", mock.Anything, recipe.Title, recipe.Description, []string{"chicken breasts", "lemons"}, (*string)(nil)).
		Return(&embedding)
	m.recipes.On("Create", mock.Anything, mock.Anything, "healthy chicken dinner for 4", []string{"gluten-free"}, (*string)(nil), &embedding).
		Return(testRow(&embedding), nil)

	w := doRequest(router, http.MethodPost, "/api/v1/recipes/generate", map[string]interface{}{
		"prompt":              "healthy chicken dinner for 4",
		"dietary_preferences": []string{"gluten-free"},
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var envelope types.RecipeEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEqual(t, uuid.Nil, envelope.ID)
	assert.Equal(t, "Lemon Herb Chicken", envelope.Recipe.Title)
	assert.Equal(t, 50, envelope.Recipe.TotalTimeMinutes)
	assert.Equal(t, []string{"4 pieces chicken breasts"}, envelope.ShoppingList["Meat & Poultry"])
	assert.Equal(t, []string{"2 whole lemons"}, envelope.ShoppingList["Produce"])

	m.llm.AssertExpectations(t)
	m.embedding.AssertExpectations(t)
	m.recipes.AssertExpectations(t)
}

func TestGenerateRecipeEndpointToleratesMissingEmbedding(t *testing.T) {
	router, m := setupRecipeTestRouter(t)

	recipe := testRecipe()

	m.llm.On("GenerateRecipe", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(recipe, nil)
	m.embedding.On("GenerateRecipeEmbedding", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)
	m.recipes.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, (*pgvector.Vector)(nil)).
		Return(testRow(nil), nil)

	w := doRequest(router, http.MethodPost, "/api/v1/recipes/generate", map[string]interface{}{
		"prompt": "quick vegan pasta",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	m.recipes.AssertExpectations(t)
}

func TestGenerateRecipeEndpointGenerationFailure(t *testing.T) {
	router, m := setupRecipeTestRouter(t)

	m.llm.On("GenerateRecipe", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	w := doRequest(router, http.MethodPost, "/api/v1/recipes/generate", map[string]interface{}{
		"prompt": "chicken soup",
	})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	m.recipes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateRecipeEndpointPersistenceFailure(t *testing.T) {
	router, m := setupRecipeTestRouter(t)

	m.llm.On("GenerateRecipe", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(testRecipe(), nil)
	m.embedding.On("GenerateRecipeEmbedding", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)
	m.recipes.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	w := doRequest(router, http.MethodPost, "/api/v1/recipes/generate", map[string]interface{}{
		"prompt": "chicken soup",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGenerateRecipeEndpointValidation(t *testing.T) {
	router, _ := setupRecipeTestRouter(t)

	t.Run("missing prompt", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/v1/recipes/generate", map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("prompt too short", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/v1/recipes/generate", map[string]interface{}{"prompt": "ab"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetRecipeEndpoint(t *testing.T) {
	router, m := setupRecipeTestRouter(t)

	row := testRow(nil)
	m.recipes.On("GetByID", mock.Anything, row.ID).Return(row, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/recipes/"+row.ID.String(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope types.RecipeEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, row.ID, envelope.ID)
	assert.Equal(t, "Lemon Herb Chicken", envelope.Recipe.Title)
}

func TestGetRecipeEndpointNotFound(t *testing.T) {
	router, m := setupRecipeTestRouter(t)

	m.recipes.On("GetByID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	w := doRequest(router, http.MethodGet, "/api/v1/recipes/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRecipeEndpointInvalidID(t *testing.T) {
	router, _ := setupRecipeTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/recipes/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFindSimilarRecipesEndpoint(t *testing.T) {
	router, m := setupRecipeTestRouter(t)

	embedding := pgvector.NewVector([]float32{1, 0})
	source := testRow(&embedding)
	neighbor := testRow(&embedding)

	m.recipes.On("GetByID", mock.Anything, source.ID).Return(source, nil)
	m.recipes.On("FindSimilar", mock.Anything, embedding, 3, &source.ID).
		Return([]*model.Recipe{neighbor}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/recipes/"+source.ID.String()+"/similar?limit=3", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var envelopes []types.RecipeEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelopes))
	require.Len(t, envelopes, 1)
	assert.Equal(t, neighbor.ID, envelopes[0].ID)
	m.recipes.AssertExpectations(t)
}

func TestFindSimilarRecipesEndpointDefaultLimit(t *testing.T) {
	router, m := setupRecipeTestRouter(t)

	embedding := pgvector.NewVector([]float32{1, 0})
	source := testRow(&embedding)

	m.recipes.On("GetByID", mock.Anything, source.ID).Return(source, nil)
	m.recipes.On("FindSimilar", mock.Anything, embedding, 5, &source.ID).
		Return([]*model.Recipe{}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/recipes/"+source.ID.String()+"/similar", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	m.recipes.AssertExpectations(t)
}

func TestFindSimilarRecipesEndpointMissingEmbedding(t *testing.T) {
	router, m := setupRecipeTestRouter(t)

	source := testRow(nil)
	m.recipes.On("GetByID", mock.Anything, source.ID).Return(source, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/recipes/"+source.ID.String()+"/similar", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.recipes.AssertNotCalled(t, "FindSimilar", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFindSimilarRecipesEndpointLimitBounds(t *testing.T) {
	router, m := setupRecipeTestRouter(t)

	embedding := pgvector.NewVector([]float32{1, 0})
	source := testRow(&embedding)
	m.recipes.On("GetByID", mock.Anything, mock.Anything).Return(source, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/recipes/"+source.ID.String()+"/similar?limit=50", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/recipes/"+source.ID.String()+"/similar?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFindSimilarRecipesEndpointSourceNotFound(t *testing.T) {
	router, m := setupRecipeTestRouter(t)

	m.recipes.On("GetByID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	w := doRequest(router, http.MethodGet, "/api/v1/recipes/"+uuid.NewString()+"/similar", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRecipesEndpoint(t *testing.T) {
	router, m := setupRecipeTestRouter(t)

	m.recipes.On("ListRecent", mock.Anything, 20).Return([]*model.Recipe{testRow(nil)}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/recipes", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var envelopes []types.RecipeEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelopes))
	assert.Len(t, envelopes, 1)
	m.recipes.AssertExpectations(t)
}

func TestListRecipesEndpointWithSearch(t *testing.T) {
	router, m := setupRecipeTestRouter(t)

	m.recipes.On("SearchByTitle", mock.Anything, "chicken", 10).Return([]*model.Recipe{}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/recipes?search=chicken&limit=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	m.recipes.AssertExpectations(t)
	m.recipes.AssertNotCalled(t, "ListRecent", mock.Anything, mock.Anything)
}

func TestListRecipesEndpointValidation(t *testing.T) {
	router, _ := setupRecipeTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/recipes?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/recipes?search=a", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteRecipeEndpoint(t *testing.T) {
	router, m := setupRecipeTestRouter(t)

	id := uuid.New()
	m.recipes.On("Delete", mock.Anything, id).Return(true, nil)

	w := doRequest(router, http.MethodDelete, "/api/v1/recipes/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestDeleteRecipeEndpointNotFound(t *testing.T) {
	router, m := setupRecipeTestRouter(t)

	m.recipes.On("Delete", mock.Anything, mock.Anything).Return(false, nil)

	w := doRequest(router, http.MethodDelete, "/api/v1/recipes/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
