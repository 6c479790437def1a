package workflow

import (
	"errors"

	"github.com/pageza/fridgechef/backend/internal/service"
)

// Step names
const (
	StepAnalyzeImage      = "analyze_image"
	StepFormatIngredients = "format_ingredients"
	StepSearchRecipes     = "search_recipes"
	StepGetDetails        = "get_details"
	StepExtractParameters = "extract_parameters"
	StepComplexSearch     = "complex_search"
	StepAnswerQuestion    = "answer_question"
)

const (
	WelcomeMessage           = "Welcome to Recipe Agent! Upload a photo or ask a question."
	NoImageMessage           = "No image provided. Please upload a photo of your fridge."
	NoIngredientMatchMessage = "No recipes found with those ingredients. Try adding more ingredients or using different ones."
	UnexpectedErrorMessage   = "An unexpected error occurred. Please try again."
)

var stepFailureMessages = map[string]string{
	StepAnalyzeImage:      "An unexpected error occurred while analyzing the image. Please try again.",
	StepFormatIngredients: "Failed to format ingredients. Please try again.",
	StepSearchRecipes:     "Failed to search for recipes. Please try again.",
	StepGetDetails:        "Failed to get recipe details. Please try again.",
	StepExtractParameters: "Sorry, I couldn't understand that request. Try rephrasing it.",
	StepComplexSearch:     "Failed to search for recipes. Please try again.",
	StepAnswerQuestion:    "Sorry, I couldn't answer that right now. Please try again.",
}

// userMessage maps a step failure onto the text shown to the user
func userMessage(step string, err error) string {
	switch {
	case errors.Is(err, service.ErrNoImage):
		return NoImageMessage
	case errors.Is(err, service.ErrInvalidImageEncoding):
		return "Invalid image format. Please ensure the image is properly encoded."
	case errors.Is(err, service.ErrUnreadableImage):
		return "Unable to process the image. Please ensure it's a valid image file."
	case errors.Is(err, service.ErrImageNotFound):
		return "The uploaded image could not be found. Please upload it again."
	case errors.Is(err, service.ErrImageStoreDisabled):
		return "Image uploads are not available. Please attach the photo directly."
	case errors.Is(err, service.ErrNoIngredients):
		return "No ingredients could be identified in the image. Please ensure the image clearly shows the contents of your fridge."
	case errors.Is(err, service.ErrQuotaExceeded):
		return quotaMessage(step)
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid API configuration. Please contact support."
	case errors.Is(err, service.ErrSafetyBlocked):
		if step == StepAnalyzeImage {
			return "Unable to analyze this image. Please try a different image."
		}
		return "That request was blocked by the content safety filter. Please try rephrasing it."
	}

	var apiErr *service.APIError
	if errors.As(err, &apiErr) && (step == StepSearchRecipes || step == StepGetDetails || step == StepComplexSearch) {
		return "The recipe service is unavailable right now. Please try again later."
	}
	if msg, ok := stepFailureMessages[step]; ok {
		return msg
	}
	return UnexpectedErrorMessage
}

func quotaMessage(step string) string {
	switch step {
	case StepAnalyzeImage:
		return "Image analysis quota exceeded. Please try again later."
	case StepSearchRecipes, StepGetDetails, StepComplexSearch:
		return "Recipe search quota exceeded. Please try again later."
	}
	return "AI service quota exceeded. Please try again later."
}
