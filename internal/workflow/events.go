package workflow

import (
	"encoding/json"

	"github.com/pageza/fridgechef/backend/internal/types"
)

// EventType is the kind of a progress event
type EventType string

const (
	EventStep     EventType = "step"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// StepStatus is only set on step events
type StepStatus string

const (
	StatusInProgress StepStatus = "in_progress"
	StatusComplete   StepStatus = "complete"
)

// StepData is the payload of a step completion
type StepData struct {
	IngredientsCount *int     `json:"ingredients_count,omitempty"`
	Ingredients      []string `json:"ingredients,omitempty"`
	RecipeCount      *int     `json:"recipe_count,omitempty"`
}

// Summary describes the outcome of a workflow
type Summary struct {
	TotalIngredientsFound    *int   `json:"total_ingredients_found,omitempty"`
	IngredientsUsedForSearch string `json:"ingredients_used_for_search,omitempty"`
	TotalRecipes             *int   `json:"total_recipes,omitempty"`
	Query                    string `json:"query,omitempty"`
}

// Event is one line of the progress stream
type Event struct {
	Type    EventType
	Step    string
	Status  StepStatus
	Message string
	Data    *StepData
	Recipes []types.RecipeDetails
	Summary *Summary
}

// IsTerminal reports whether the event ends the stream
func (e Event) IsTerminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

type eventWire struct {
	Type    EventType              `json:"type"`
	Step    string                 `json:"step,omitempty"`
	Status  StepStatus             `json:"status,omitempty"`
	Message string                 `json:"message,omitempty"`
	Data    *StepData              `json:"data,omitempty"`
	Recipes *[]types.RecipeDetails `json:"recipes,omitempty"`
	Summary *Summary               `json:"summary,omitempty"`
}

// MarshalJSON always writes a recipes array on complete events, even an
// empty one, and never on other events.
func (e Event) MarshalJSON() ([]byte, error) {
	w := eventWire{
		Type:    e.Type,
		Step:    e.Step,
		Status:  e.Status,
		Message: e.Message,
		Data:    e.Data,
		Summary: e.Summary,
	}
	if e.Type == EventComplete {
		recipes := e.Recipes
		if recipes == nil {
			recipes = []types.RecipeDetails{}
		}
		w.Recipes = &recipes
	}
	return json.Marshal(w)
}

// StepStarted announces that a step is running
func StepStarted(step, message string) Event {
	return Event{Type: EventStep, Step: step, Status: StatusInProgress, Message: message}
}

// StepCompleted reports a finished step
func StepCompleted(step, message string, data *StepData) Event {
	return Event{Type: EventStep, Step: step, Status: StatusComplete, Message: message, Data: data}
}

// Complete ends the stream successfully
func Complete(message string, recipes []types.RecipeDetails, summary *Summary) Event {
	return Event{Type: EventComplete, Message: message, Recipes: recipes, Summary: summary}
}

// Failure ends the stream with an error attributed to step
func Failure(step, message string) Event {
	return Event{Type: EventError, Step: step, Message: message}
}

func intPtr(n int) *int {
	return &n
}
