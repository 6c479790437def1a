package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pageza/fridgechef/backend/internal/types"
)

func TestParseIngredientList(t *testing.T) {
	text := `Here are the visible items:
Door compartment:
1. Dijon mustard
2) Greek yogurt
• Large brown eggs
**Orange juice**
- 2% milk
ab
123
Vegetable DRAWER

   Baby spinach   `

	assert.Equal(t, []string{
		"Dijon mustard",
		"Greek yogurt",
		"Large brown eggs",
		"Orange juice",
		"% milk",
		"Baby spinach",
	}, ParseIngredientList(text))
}

func TestParseIngredientListEmpty(t *testing.T) {
	assert.Empty(t, ParseIngredientList(""))
	assert.Empty(t, ParseIngredientList("Items:\nTop shelf\n"))
}

func TestNormalizeIngredientString(t *testing.T) {
	assert.Equal(t, "a, b c, d", NormalizeIngredientString(" a,b c , ,d,"))
	assert.Equal(t, "", NormalizeIngredientString(" , "))
}

func TestMatchIntentLabel(t *testing.T) {
	assert.Equal(t, types.IntentFridgeImage, MatchIntentLabel("FRIDGE_IMAGE"))
	assert.Equal(t, types.IntentRecipeSearch, MatchIntentLabel("'recipe_search'\n"))
	assert.Equal(t, types.IntentGeneralQA, MatchIntentLabel("general_qa"))
	assert.Equal(t, types.IntentGeneralQA, MatchIntentLabel(""))
}
