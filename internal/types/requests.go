package types

import "strings"

// ChatRequest is the body of a chat turn. Image and message are mutually
// exclusive in practice; an image always wins.
type ChatRequest struct {
	Message     string `json:"message"`
	ImageBase64 string `json:"image_base64"`
	ImageKey    string `json:"image_key"`
}

// HasImage reports whether the request carries an inline image or a stored one
func (r *ChatRequest) HasImage() bool {
	return strings.TrimSpace(r.ImageBase64) != "" || strings.TrimSpace(r.ImageKey) != ""
}

// Query returns the trimmed free-text message
func (r *ChatRequest) Query() string {
	return strings.TrimSpace(r.Message)
}

// UploadImageRequest represents the request body for storing a fridge photo
type UploadImageRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

// SignupRequest represents the request body for creating an account
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ListSavedRecipesQuery holds the query string of the saved recipe listing
type ListSavedRecipesQuery struct {
	Sort   string `form:"sort"`
	Search string `form:"search"`
}
