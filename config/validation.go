package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if cfg.GeminiAPIKey == "" {
		errs = append(errs, ValidationError{"GEMINI_API_KEY", "is required"})
	}
	if cfg.SpoonacularAPIKey == "" {
		errs = append(errs, ValidationError{"SPOONACULAR_API_KEY", "is required"})
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", fmt.Sprintf("is required in %s environment", cfg.Environment)})
	}
	if cfg.SpoonacularRPS <= 0 {
		errs = append(errs, ValidationError{"SPOONACULAR_RPS", "must be positive"})
	}
	if cfg.ChatRateLimit < 0 {
		errs = append(errs, ValidationError{"CHAT_RATE_LIMIT", "must not be negative"})
	}
	for _, key := range []struct{ name, value string }{
		{"GEMINI_API_URL", cfg.GeminiAPIURL},
		{"SPOONACULAR_API_URL", cfg.SpoonacularAPIURL},
	} {
		if u, err := url.Parse(key.value); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{key.name, "must be an absolute URL"})
		}
	}
	if cfg.UsePostgres() && cfg.DBPassword == "" && cfg.Environment.IsProduction() {
		errs = append(errs, ValidationError{"DB_PASSWORD", "is required when DB_HOST is set in production"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
