package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/pageza/fridgechef/backend/config"
	"github.com/pageza/fridgechef/backend/internal/database"
	"github.com/pageza/fridgechef/backend/internal/logging"
	"github.com/pageza/fridgechef/backend/internal/models"
	"github.com/pageza/fridgechef/backend/internal/service"
)

// seed_recipes saves a batch of random recipes from the search API into a
// user's saved recipes, for demoing the dashboard.
func main() {
	email := flag.String("email", "demo@example.com", "account to save the recipes for")
	count := flag.Int("n", 10, "number of recipes to save")
	flag.Parse()

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

	var user models.User
	if err := db.Where("email = ?", *email).First(&user).Error; err != nil {
		logger.Fatalw("user not found, run seed_test_users first", "email", *email, "error", err)
	}

	spoonacular, err := service.NewSpoonacularService(cfg, logger)
	if err != nil {
		logger.Fatalw("failed to create recipe client", "error", err)
	}
	saved := service.NewSavedRecipeService(db, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	recipes, err := spoonacular.RandomRecipes(ctx, *count)
	if err != nil {
		logger.Fatalw("failed to fetch recipes", "error", err)
	}

	added := 0
	for i := range recipes {
		_, err := saved.Save(ctx, user.ID, &recipes[i])
		switch {
		case errors.Is(err, service.ErrDuplicateRecipe):
			logger.Debugw("already saved", "recipe_id", recipes[i].ID)
		case err != nil:
			logger.Warnw("failed to save recipe", "recipe_id", recipes[i].ID, "error", err)
		default:
			added++
		}
	}
	logger.Infow("seeding finished", "email", *email, "fetched", len(recipes), "saved", added)
}
