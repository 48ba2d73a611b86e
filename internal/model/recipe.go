package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pantryml/recipegen/internal/types"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	return scanJSONB(value, a)
}

// JSONBIngredients stores the structured ingredient list as JSONB
type JSONBIngredients []types.Ingredient

func (a JSONBIngredients) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

func (a *JSONBIngredients) Scan(value interface{}) error {
	return scanJSONB(value, a)
}

// JSONBInstructions stores the structured instruction list as JSONB
type JSONBInstructions []types.Instruction

func (a JSONBInstructions) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

func (a *JSONBInstructions) Scan(value interface{}) error {
	return scanJSONB(value, a)
}

// JSONBShoppingList stores the aisle -> item strings mapping as JSONB
type JSONBShoppingList map[string][]string

func (m JSONBShoppingList) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

func (m *JSONBShoppingList) Scan(value interface{}) error {
	return scanJSONB(value, m)
}

func scanJSONB(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, dest)
}

// Recipe is the persisted form of a generated recipe. The ID is assigned by
// the caller before the insert so it can be returned to the client
// synchronously. Embedding is nil when the embedding service was
// unavailable at generation time.
type Recipe struct {
	ID                 uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	Title              string              `gorm:"size:255;not null;index" json:"title"`
	Description        string              `gorm:"type:text;not null" json:"description"`
	Servings           int                 `gorm:"not null" json:"servings"`
	PrepTimeMinutes    int                 `gorm:"not null" json:"prep_time_minutes"`
	CookTimeMinutes    int                 `gorm:"not null" json:"cook_time_minutes"`
	Ingredients        JSONBIngredients    `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions       JSONBInstructions   `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	ShoppingList       JSONBShoppingList   `gorm:"type:jsonb;not null;default:'{}'" json:"shopping_list"`
	OriginalPrompt     string              `gorm:"type:text;not null" json:"original_prompt"`
	DietaryPreferences JSONBStringArray    `gorm:"type:jsonb;default:'[]'" json:"dietary_preferences"`
	CuisineType        *string             `gorm:"size:100" json:"cuisine_type,omitempty"`
	Embedding          *pgvector.Vector    `gorm:"type:vector(768)" json:"-"`
}

// TableName overrides the GORM table name.
func (Recipe) TableName() string {
	return "recipes"
}

// ToRecipe converts the persisted row back into the transient value object,
// recomputing the derived total time.
func (r *Recipe) ToRecipe() types.Recipe {
	return types.Recipe{
		Title:            r.Title,
		Description:      r.Description,
		Servings:         r.Servings,
		PrepTimeMinutes:  r.PrepTimeMinutes,
		CookTimeMinutes:  r.CookTimeMinutes,
		TotalTimeMinutes: r.PrepTimeMinutes + r.CookTimeMinutes,
		Ingredients:      []types.Ingredient(r.Ingredients),
		Instructions:     []types.Instruction(r.Instructions),
	}
}

// ToEnvelope converts the persisted row into the API response envelope.
func (r *Recipe) ToEnvelope() types.RecipeEnvelope {
	return types.RecipeEnvelope{
		ID:           r.ID,
		Recipe:       r.ToRecipe(),
		ShoppingList: map[string][]string(r.ShoppingList),
	}
}
