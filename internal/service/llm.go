package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pantryml/recipegen/config"
	"github.com/pantryml/recipegen/internal/types"
)

// maxRetries is the number of additional attempts after the first failure.
const maxRetries = 2

const recipeSystemPrompt = `You are an expert chef and recipe developer. Your task is to create detailed,
accurate, and delicious recipes based on user requests.

Respond only with a JSON object using this exact structure:
{
    "title": "Recipe title",
    "description": "A brief, appetizing description of the dish (1-2 sentences)",
    "servings": 4,
    "prep_time_minutes": 15,
    "cook_time_minutes": 30,
    "ingredients": [
        {"name": "chicken breast", "amount": 4, "unit": "pieces", "aisle": "Meat & Poultry", "notes": "boneless, skinless"}
    ],
    "instructions": [
        {"step": 1, "description": "Detailed instruction for this step", "duration_minutes": 10, "ingredients_used": ["chicken breast"]}
    ]
}

When generating recipes:
1. Create realistic, tested-quality recipes with accurate measurements
2. Assign each ingredient to an appropriate grocery aisle category:
   Produce, Meat & Poultry, Seafood, Dairy & Eggs, Bakery, Frozen Foods,
   Pantry, Beverages, Condiments & Sauces
3. Ensure every ingredient listed is used in at least one instruction step
4. Include the ingredient names used in each instruction's ingredients_used field
5. Keep servings between 1 and 20, prep time within 180 minutes and cook time within 480 minutes
6. Number instruction steps sequentially starting at 1
7. Write clear, detailed instructions that a home cook can follow

If dietary preferences are specified, ensure the recipe fully complies with them.
If a cuisine type is specified, create an authentic dish from that culinary tradition.`

// LLMService generates recipes via an OpenAI-compatible chat completions
// endpoint.
type LLMService struct {
	baseURL     string
	model       string
	apiKey      string
	temperature float64
	maxTokens   int
	client      *http.Client
	logger      *zap.Logger
}

// NewLLMService creates a new LLMService instance
func NewLLMService(cfg *config.Config, logger *zap.Logger) *LLMService {
	return &LLMService{
		baseURL:     strings.TrimRight(cfg.LLMBaseURL, "/"),
		model:       cfg.LLMModel,
		apiKey:      cfg.LLMAPIKey,
		temperature: cfg.AITemperature,
		maxTokens:   cfg.AIMaxTokens,
		client:      &http.Client{Timeout: time.Duration(cfg.AITimeoutSeconds) * time.Second},
		logger:      logger,
	}
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateRecipe builds the augmented prompt, calls the chat completions
// endpoint and parses the structured recipe out of the response. Transport,
// non-200 and parse failures are retried up to maxRetries times; exhausted
// retries return a *GenerationError.
func (s *LLMService) GenerateRecipe(ctx context.Context, prompt string, dietaryPrefs []string, cuisineType *string) (*types.Recipe, error) {
	fullPrompt := "Create a recipe for: " + prompt
	if len(dietaryPrefs) > 0 {
		fullPrompt += "\nDietary requirements: " + strings.Join(dietaryPrefs, ", ")
	}
	if cuisineType != nil && *cuisineType != "" {
		fullPrompt += "\nCuisine style: " + *cuisineType
	}

	attempts := 0
	var lastErr error
	for attempts <= maxRetries {
		attempts++

		recipe, err := s.generateOnce(ctx, fullPrompt)
		if err == nil {
			return recipe, nil
		}
		lastErr = err
		s.logger.Warn("recipe generation attempt failed",
			zap.Int("attempt", attempts),
			zap.Error(err))

		if ctx.Err() != nil {
			break
		}
	}

	return nil, &GenerationError{Attempts: attempts, Err: lastErr}
}

func (s *LLMService) generateOnce(ctx context.Context, prompt string) (*types.Recipe, error) {
	reqBody := chatRequest{
		Model: s.model,
		Messages: []Message{
			{Role: "system", Content: recipeSystemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    s.temperature,
		MaxTokens:      s.maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no response from API")
	}

	var recipe types.Recipe
	if err := json.Unmarshal([]byte(result.Choices[0].Message.Content), &recipe); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}

	if recipe.Title == "" || len(recipe.Ingredients) == 0 || len(recipe.Instructions) == 0 {
		return nil, fmt.Errorf("generated recipe is incomplete")
	}

	recipe.TotalTimeMinutes = recipe.PrepTimeMinutes + recipe.CookTimeMinutes
	return &recipe, nil
}
