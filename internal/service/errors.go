package service

import (
	"errors"
	"fmt"
)

// Input errors
var (
	ErrNoImage              = errors.New("no image data provided")
	ErrInvalidImageEncoding = errors.New("invalid image encoding")
	ErrUnreadableImage      = errors.New("unreadable image")
	ErrImageStoreDisabled   = errors.New("image store is not configured")
	ErrImageNotFound        = errors.New("stored image not found")
)

// Upstream errors
var (
	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrInvalidCredentials = errors.New("invalid api credentials")
	ErrSafetyBlocked      = errors.New("blocked by safety filter")
	ErrEmptyResponse      = errors.New("empty model response")
	ErrNoIngredients      = errors.New("no ingredients identified")
	ErrMalformedResponse  = errors.New("malformed api response")
)

// Store errors
var (
	ErrRecipeNotFound  = errors.New("recipe not found")
	ErrDuplicateRecipe = errors.New("recipe already saved")
	ErrUserExists      = errors.New("user already exists")
	ErrBadLogin        = errors.New("invalid email or password")
)

// APIError is returned when a remote API answers with a non-2xx status
type APIError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API request failed with status %d: %s", e.Service, e.StatusCode, e.Body)
}
