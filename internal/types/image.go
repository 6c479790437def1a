package types

// Image is a decoded, validated photo ready to send to the vision model
type Image struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
}

// Intent is the outcome of classifying a free-text message
type Intent string

const (
	IntentFridgeImage  Intent = "fridge_image"
	IntentRecipeSearch Intent = "recipe_search"
	IntentGeneralQA    Intent = "general_qa"
)

// Intents lists every label the classifier may answer with, in match order
var Intents = []Intent{IntentFridgeImage, IntentRecipeSearch, IntentGeneralQA}
