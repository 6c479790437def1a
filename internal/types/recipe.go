package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Nutrition is the per-serving summary shown on recipe cards
type Nutrition struct {
	Calories      *float64 `json:"calories,omitempty"`
	Fat           *float64 `json:"fat,omitempty"`
	Carbohydrates *float64 `json:"carbohydrates,omitempty"`
	Protein       *float64 `json:"protein,omitempty"`
}

// Ingredient is one line of a recipe's ingredient list
type Ingredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// InstructionStep is one numbered cooking step. Length is in minutes.
type InstructionStep struct {
	Number int    `json:"number"`
	Step   string `json:"step"`
	Length int    `json:"length"`
}

// IngredientRef is an ingredient annotation returned by the ingredient search
type IngredientRef struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Original string  `json:"original,omitempty"`
}

// IngredientMatch is one candidate from a search by ingredients. It links a
// recipe id to the searched ingredients it uses and the ones it is missing.
type IngredientMatch struct {
	ID                    int             `json:"id"`
	Title                 string          `json:"title"`
	Image                 string          `json:"image"`
	UsedIngredients       []IngredientRef `json:"usedIngredients"`
	MissedIngredients     []IngredientRef `json:"missedIngredients"`
	UsedIngredientCount   int             `json:"usedIngredientCount"`
	MissedIngredientCount int             `json:"missedIngredientCount"`
}

// RecipeDetails is the merged view of one recipe sent to clients.
//
// The used/missed fields are only populated for recipes that came out of an
// ingredient search.
type RecipeDetails struct {
	ID                   int               `json:"id"`
	Title                string            `json:"title"`
	Image                string            `json:"image"`
	ReadyInMinutes       int               `json:"readyInMinutes"`
	PreparationMinutes   *int              `json:"preparationMinutes,omitempty"`
	CookingMinutes       *int              `json:"cookingMinutes,omitempty"`
	Nutrition            Nutrition         `json:"nutrition"`
	Ingredients          []Ingredient      `json:"ingredients"`
	Summary              string            `json:"summary"`
	AnalyzedInstructions []InstructionStep `json:"analyzedInstructions"`

	UsedIngredients       []IngredientRef `json:"usedIngredients,omitempty"`
	MissedIngredients     []IngredientRef `json:"missedIngredients,omitempty"`
	UsedIngredientCount   *int            `json:"usedIngredientCount,omitempty"`
	MissedIngredientCount *int            `json:"missedIngredientCount,omitempty"`
}

// UsedCount returns the used ingredient count, zero when unknown
func (r *RecipeDetails) UsedCount() int {
	if r.UsedIngredientCount == nil {
		return 0
	}
	return *r.UsedIngredientCount
}

// MissedCount returns the missed ingredient count, zero when unknown
func (r *RecipeDetails) MissedCount() int {
	if r.MissedIngredientCount == nil {
		return 0
	}
	return *r.MissedIngredientCount
}

// ApplyMatch copies the ingredient annotations of a search candidate onto the
// recipe. A nil match resets the counts to zero.
func (r *RecipeDetails) ApplyMatch(m *IngredientMatch) {
	used, missed := 0, 0
	if m != nil {
		r.UsedIngredients = m.UsedIngredients
		r.MissedIngredients = m.MissedIngredients
		used, missed = m.UsedIngredientCount, m.MissedIngredientCount
	}
	r.UsedIngredientCount = &used
	r.MissedIngredientCount = &missed
}

// ErrMissingRecipeField is returned when a recipe record lacks its id or title
var ErrMissingRecipeField = errors.New("recipe record is missing a required field")

// recipeWire accepts both the search API's raw shape and the flat shape this
// service emits.
type recipeWire struct {
	ID                    *int            `json:"id"`
	Title                 *string         `json:"title"`
	Image                 string          `json:"image"`
	ReadyInMinutes        int             `json:"readyInMinutes"`
	PreparationMinutes    *int            `json:"preparationMinutes"`
	CookingMinutes        *int            `json:"cookingMinutes"`
	Nutrition             json.RawMessage `json:"nutrition"`
	Ingredients           json.RawMessage `json:"ingredients"`
	ExtendedIngredients   json.RawMessage `json:"extendedIngredients"`
	Summary               string          `json:"summary"`
	AnalyzedInstructions  json.RawMessage `json:"analyzedInstructions"`
	UsedIngredients       []IngredientRef `json:"usedIngredients"`
	MissedIngredients     []IngredientRef `json:"missedIngredients"`
	UsedIngredientCount   *int            `json:"usedIngredientCount"`
	MissedIngredientCount *int            `json:"missedIngredientCount"`
}

// UnmarshalJSON normalises nutrition, ingredient and instruction shapes
func (r *RecipeDetails) UnmarshalJSON(data []byte) error {
	var w recipeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ID == nil {
		return fmt.Errorf("%w: id", ErrMissingRecipeField)
	}
	if w.Title == nil {
		return fmt.Errorf("%w: title", ErrMissingRecipeField)
	}

	ingredients := w.ExtendedIngredients
	if isEmptyJSON(ingredients) {
		ingredients = w.Ingredients
	}

	*r = RecipeDetails{
		ID:                    *w.ID,
		Title:                 *w.Title,
		Image:                 w.Image,
		ReadyInMinutes:        w.ReadyInMinutes,
		PreparationMinutes:    nonNegative(w.PreparationMinutes),
		CookingMinutes:        nonNegative(w.CookingMinutes),
		Nutrition:             parseNutrition(w.Nutrition),
		Ingredients:           parseIngredients(ingredients),
		Summary:               w.Summary,
		AnalyzedInstructions:  parseInstructions(w.AnalyzedInstructions),
		UsedIngredients:       w.UsedIngredients,
		MissedIngredients:     w.MissedIngredients,
		UsedIngredientCount:   w.UsedIngredientCount,
		MissedIngredientCount: w.MissedIngredientCount,
	}
	return nil
}

// The search API reports unknown durations as -1.
func nonNegative(v *int) *int {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}

func isEmptyJSON(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

type nutrientWire struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

func parseNutrition(raw json.RawMessage) Nutrition {
	if isEmptyJSON(raw) {
		return Nutrition{}
	}

	var nested struct {
		Nutrients []nutrientWire `json:"nutrients"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && nested.Nutrients != nil {
		var n Nutrition
		for _, nutrient := range nested.Nutrients {
			amount := nutrient.Amount
			switch nutrient.Name {
			case "Calories":
				n.Calories = &amount
			case "Fat":
				n.Fat = &amount
			case "Carbohydrates":
				n.Carbohydrates = &amount
			case "Protein":
				n.Protein = &amount
			}
		}
		return n
	}

	var flat Nutrition
	if err := json.Unmarshal(raw, &flat); err != nil {
		return Nutrition{}
	}
	return flat
}

type measureWire struct {
	Amount    float64 `json:"amount"`
	UnitShort string  `json:"unitShort"`
}

type ingredientWire struct {
	Name         string   `json:"name"`
	OriginalName string   `json:"originalName"`
	Original     string   `json:"original"`
	Amount       *float64 `json:"amount"`
	Unit         *string  `json:"unit"`
	Measures     struct {
		US measureWire `json:"us"`
	} `json:"measures"`
}

func parseIngredients(raw json.RawMessage) []Ingredient {
	result := []Ingredient{}
	if isEmptyJSON(raw) {
		return result
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return result
	}
	for _, item := range items {
		var w ingredientWire
		if err := json.Unmarshal(item, &w); err != nil {
			continue
		}
		ing := Ingredient{Name: w.Name}
		if ing.Name == "" {
			ing.Name = w.OriginalName
		}
		if ing.Name == "" {
			ing.Name = w.Original
		}
		if w.Amount != nil {
			ing.Amount = *w.Amount
		} else {
			ing.Amount = w.Measures.US.Amount
		}
		if w.Unit != nil {
			ing.Unit = *w.Unit
		} else {
			ing.Unit = w.Measures.US.UnitShort
		}
		result = append(result, ing)
	}
	return result
}

type stepWire struct {
	Number int             `json:"number"`
	Step   string          `json:"step"`
	Length json.RawMessage `json:"length"`
}

type instructionWire struct {
	Steps []stepWire `json:"steps"`
	stepWire
}

func parseInstructions(raw json.RawMessage) []InstructionStep {
	result := []InstructionStep{}
	if isEmptyJSON(raw) {
		return result
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return result
	}
	for _, item := range items {
		var w instructionWire
		if err := json.Unmarshal(item, &w); err != nil {
			continue
		}
		if w.Steps != nil {
			for _, s := range w.Steps {
				result = append(result, s.toStep())
			}
			continue
		}
		if w.Step != "" {
			result = append(result, w.stepWire.toStep())
		}
	}
	return result
}

func (s stepWire) toStep() InstructionStep {
	return InstructionStep{Number: s.Number, Step: s.Step, Length: parseLength(s.Length)}
}

// length is either {"number": 15, "unit": "minutes"} or a bare number
func parseLength(raw json.RawMessage) int {
	if isEmptyJSON(raw) {
		return 0
	}
	var obj struct {
		Number int `json:"number"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Number
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}
	return 0
}

// RecipeSearchParams is the structured form of a free-text recipe request
type RecipeSearchParams struct {
	Query              string `json:"query"`
	Number             int    `json:"number"`
	Cuisine            string `json:"cuisine,omitempty"`
	Intolerances       string `json:"intolerances,omitempty"`
	IncludeIngredients string `json:"includeIngredients,omitempty"`
	ExcludeIngredients string `json:"excludeIngredients,omitempty"`
	MaxReadyTime       int    `json:"maxReadyTime,omitempty"`
}

const (
	// DefaultResultCount is used when the extracted parameters omit a count
	DefaultResultCount = 10
	// MaxResultCount is the search API's ceiling for complex searches
	MaxResultCount = 100
)

// Normalize fills defaults and clamps the result count. fallbackQuery is used
// when no dish could be extracted.
func (p *RecipeSearchParams) Normalize(fallbackQuery string) {
	if p.Query == "" {
		p.Query = fallbackQuery
	}
	if p.Number <= 0 {
		p.Number = DefaultResultCount
	}
	if p.Number > MaxResultCount {
		p.Number = MaxResultCount
	}
	if p.MaxReadyTime < 0 {
		p.MaxReadyTime = 0
	}
}
