package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/pantryml/recipegen/config"
)

// EmbeddingService generates text embeddings via an OpenAI-compatible
// embeddings endpoint. Failures are never propagated: similarity search is
// an optional feature and recipe generation must keep working when the
// embedding model is down.
type EmbeddingService struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(cfg *config.Config, logger *zap.Logger) *EmbeddingService {
	return &EmbeddingService{
		baseURL: strings.TrimRight(cfg.LLMBaseURL, "/"),
		model:   cfg.EmbeddingModel,
		apiKey:  cfg.LLMAPIKey,
		client:  &http.Client{Timeout: time.Duration(cfg.EmbeddingTimeoutSeconds) * time.Second},
		logger:  logger,
	}
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// GenerateEmbedding returns an embedding vector for the given text, or nil
// when the embedding service is unreachable or returns a malformed body.
func (s *EmbeddingService) GenerateEmbedding(ctx context.Context, text string) *pgvector.Vector {
	body, err := json.Marshal(embeddingRequest{Model: s.model, Input: text})
	if err != nil {
		s.logger.Warn("failed to marshal embedding request", zap.Error(err))
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		s.logger.Warn("failed to create embedding request", zap.Error(err))
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("embedding request failed", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Warn("embedding API returned error status", zap.Int("status", resp.StatusCode))
		return nil
	}

	var result embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		s.logger.Warn("failed to decode embedding response", zap.Error(err))
		return nil
	}

	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		s.logger.Warn("embedding response contained no vectors")
		return nil
	}

	vec := pgvector.NewVector(result.Data[0].Embedding)
	s.logger.Debug("generated embedding",
		zap.Int("dimensions", len(result.Data[0].Embedding)))
	return &vec
}

// GenerateRecipeEmbedding combines a recipe's key attributes into one text
// blob and embeds it.
func (s *EmbeddingService) GenerateRecipeEmbedding(ctx context.Context, title, description string, ingredientNames []string, cuisineType *string) *pgvector.Vector {
	parts := []string{
		fmt.Sprintf("Recipe: %s", title),
		fmt.Sprintf("Description: %s", description),
		fmt.Sprintf("Ingredients: %s", strings.Join(ingredientNames, ", ")),
	}
	if cuisineType != nil && *cuisineType != "" {
		parts = append(parts, fmt.Sprintf("Cuisine: %s", *cuisineType))
	}

	return s.GenerateEmbedding(ctx, strings.Join(parts, "\n"))
}
