package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort     string
	ServerHost     string
	AllowedOrigins []string

	// Gemini configuration
	GeminiAPIKey      string
	GeminiAPIURL      string
	GeminiVisionModel string
	GeminiTextModel   string

	// Spoonacular configuration
	SpoonacularAPIKey string
	SpoonacularAPIURL string
	SpoonacularRPS    float64

	// Database configuration. Postgres is used when DBHost is set,
	// otherwise the SQLite file at DBPath.
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string

	// Image store
	S3BucketName string
	AWSRegion    string

	// Requests per hour per client on the chat endpoint
	ChatRateLimit int

	LogLevel string
}

const (
	defaultGeminiAPIURL      = "https://generativelanguage.googleapis.com/v1beta"
	defaultSpoonacularAPIURL = "https://api.spoonacular.com"
	devJWTSecret             = "fridgechef-dev-secret"
)

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{Environment: env}

	cfg.ServerHost = readValue("SERVER_HOST", "0.0.0.0")
	cfg.ServerPort = readValue("SERVER_PORT", "8000")
	cfg.AllowedOrigins = splitList(readValue("ALLOWED_ORIGINS", "http://localhost:3000"))

	cfg.GeminiAPIKey = readValue("GEMINI_API_KEY", "")
	cfg.GeminiAPIURL = readValue("GEMINI_API_URL", defaultGeminiAPIURL)
	cfg.GeminiVisionModel = readValue("GEMINI_VISION_MODEL", "gemini-2.5-flash")
	cfg.GeminiTextModel = readValue("GEMINI_TEXT_MODEL", "gemini-2.0-flash")

	cfg.SpoonacularAPIKey = readValue("SPOONACULAR_API_KEY", "")
	cfg.SpoonacularAPIURL = readValue("SPOONACULAR_API_URL", defaultSpoonacularAPIURL)

	var err error
	if cfg.SpoonacularRPS, err = strconv.ParseFloat(readValue("SPOONACULAR_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("invalid SPOONACULAR_RPS: %w", err)
	}

	cfg.DBHost = readValue("DB_HOST", "")
	cfg.DBPort = readValue("DB_PORT", "5432")
	cfg.DBUser = readValue("DB_USER", "postgres")
	cfg.DBPassword = readValue("DB_PASSWORD", "")
	cfg.DBName = readValue("DB_NAME", "fridgechef")
	cfg.DBSSLMode = readValue("DB_SSL_MODE", "disable")
	cfg.DBPath = readValue("DB_PATH", "fridgechef.db")

	cfg.RedisURL = readValue("REDIS_URL", "")
	cfg.RedisHost = readValue("REDIS_HOST", "")
	cfg.RedisPort = readValue("REDIS_PORT", "6379")
	cfg.RedisPassword = readValue("REDIS_PASSWORD", "")
	if cfg.RedisDB, err = strconv.Atoi(readValue("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.JWTSecret = readValue("JWT_SECRET", "")
	if cfg.JWTSecret == "" && env.AllowsDevSecrets() {
		cfg.JWTSecret = devJWTSecret
	}

	cfg.S3BucketName = readValue("S3_BUCKET_NAME", "")
	cfg.AWSRegion = readValue("AWS_REGION", "")

	if cfg.ChatRateLimit, err = strconv.Atoi(readValue("CHAT_RATE_LIMIT", "30")); err != nil {
		return nil, fmt.Errorf("invalid CHAT_RATE_LIMIT: %w", err)
	}

	cfg.LogLevel = readValue("LOG_LEVEL", "info")

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// UsePostgres reports whether a Postgres server is configured
func (c *Config) UsePostgres() bool {
	return c.DBHost != ""
}

// RedisEnabled reports whether any redis connection details are configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// readValue looks a key up in the environment, then in the Docker secret file
// named after the lower-cased key, then falls back to def.
func readValue(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if v := readSecret(strings.ToLower(key)); v != "" {
		return v
	}
	return def
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
