package config

import (
	"os"
	"strings"
)

// Environment is the deployment stage the service runs in
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads the stage from CI and ENV. CI=true wins; an unset or
// unknown ENV means development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch strings.ToLower(strings.TrimSpace(os.Getenv("ENV"))) {
	case "production", "prod":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// IsProduction reports whether release logging and checks apply
func (e Environment) IsProduction() bool {
	return e == Production
}

// AllowsDevSecrets reports whether a missing JWT secret may fall back to the
// built-in development value. CI and production must supply their own.
func (e Environment) AllowsDevSecrets() bool {
	return e == Development || e == Test
}
