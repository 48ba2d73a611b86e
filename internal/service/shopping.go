package service

import (
	"strconv"

	"github.com/pantryml/recipegen/internal/types"
)

// BuildShoppingList groups a recipe's ingredients by grocery aisle. Each
// item is formatted as "{amount} {unit} {name}", with notes appended in
// parentheses when present. Within an aisle the ingredient order of the
// recipe is preserved.
func BuildShoppingList(recipe *types.Recipe) map[string][]string {
	shoppingList := make(map[string][]string)

	for _, ing := range recipe.Ingredients {
		item := formatAmount(ing.Amount) + " " + ing.Unit + " " + ing.Name
		if ing.Notes != nil && *ing.Notes != "" {
			item += " (" + *ing.Notes + ")"
		}
		shoppingList[ing.Aisle] = append(shoppingList[ing.Aisle], item)
	}

	return shoppingList
}

// formatAmount renders amounts without trailing zeros: 2 -> "2", 1.5 -> "1.5".
func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
