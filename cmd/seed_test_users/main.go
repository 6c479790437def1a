package main

import (
	"context"
	"errors"
	"log"

	"github.com/pageza/fridgechef/backend/config"
	"github.com/pageza/fridgechef/backend/internal/database"
	"github.com/pageza/fridgechef/backend/internal/logging"
	"github.com/pageza/fridgechef/backend/internal/service"
)

const testPassword = "testpassword123"

var testUsers = []struct {
	name  string
	email string
}{
	{"John Doe", "john.doe@example.com"},
	{"Jane Smith", "jane.smith@example.com"},
	{"Demo Cook", "demo@example.com"},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatalw("failed to connect to database", "error", err)
	}
	if err := database.RunMigrations(db, "migrations", logger); err != nil {
		logger.Fatalw("failed to run migrations", "error", err)
	}

	auth := service.NewAuthService(db, cfg.JWTSecret, logger)
	ctx := context.Background()

	created := 0
	for _, u := range testUsers {
		_, err := auth.Signup(ctx, u.name, u.email, testPassword)
		switch {
		case errors.Is(err, service.ErrUserExists):
			logger.Infow("user already exists, skipping", "email", u.email)
		case err != nil:
			logger.Fatalw("failed to create user", "email", u.email, "error", err)
		default:
			created++
			logger.Infow("created user", "email", u.email)
		}
	}
	logger.Infow("seeding finished", "created", created, "password", testPassword)
}
