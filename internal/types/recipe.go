package types

import "github.com/google/uuid"

// Aisles recognized by the shopping list. The generation prompt instructs
// the model to pick from this set.
var Aisles = []string{
	"Produce",
	"Meat & Poultry",
	"Seafood",
	"Dairy & Eggs",
	"Bakery",
	"Frozen Foods",
	"Pantry",
	"Beverages",
	"Condiments & Sauces",
}

// Ingredient is a single recipe ingredient.
type Ingredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Aisle  string  `json:"aisle"`
	Notes  *string `json:"notes,omitempty"`
}

// Instruction is one step of a recipe, 1-indexed.
type Instruction struct {
	Step            int      `json:"step"`
	Description     string   `json:"description"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`
	IngredientsUsed []string `json:"ingredients_used"`
}

// Recipe is a complete generated recipe. It is a transient value object;
// the persisted form lives in internal/model.
type Recipe struct {
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	Servings         int           `json:"servings"`
	PrepTimeMinutes  int           `json:"prep_time_minutes"`
	CookTimeMinutes  int           `json:"cook_time_minutes"`
	TotalTimeMinutes int           `json:"total_time_minutes"`
	Ingredients      []Ingredient  `json:"ingredients"`
	Instructions     []Instruction `json:"instructions"`
}

// IngredientNames returns the ingredient names in recipe order.
func (r *Recipe) IngredientNames() []string {
	names := make([]string, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		names[i] = ing.Name
	}
	return names
}

// GenerateRecipeRequest is the body of POST /recipes/generate.
type GenerateRecipeRequest struct {
	Prompt             string   `json:"prompt" binding:"required,min=3,max=500"`
	DietaryPreferences []string `json:"dietary_preferences"`
	CuisineType        *string  `json:"cuisine_type"`
}

// RecipeEnvelope pairs a stored recipe with its derived shopping list.
type RecipeEnvelope struct {
	ID           uuid.UUID           `json:"id"`
	Recipe       Recipe              `json:"recipe"`
	ShoppingList map[string][]string `json:"shopping_list"`
}

// ListRecipesQuery holds the query parameters of GET /recipes.
type ListRecipesQuery struct {
	Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
	Search string `form:"search" binding:"omitempty,min=2"`
}

// SimilarRecipesQuery holds the query parameters of GET /recipes/:id/similar.
type SimilarRecipesQuery struct {
	Limit int `form:"limit,default=5" binding:"min=1,max=20"`
}
