package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pageza/fridgechef/backend/config"
	"github.com/pageza/fridgechef/backend/internal/models"
	"github.com/pageza/fridgechef/backend/internal/types"
)

func TestNewSQLiteAndAutoMigrate(t *testing.T) {
	log := zap.NewNop().Sugar()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}

	db, err := New(cfg, log)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db, "unused", log))

	user := models.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: "hashedpassword",
	}
	require.NoError(t, db.Create(&user).Error)

	recipe := models.NewSavedRecipe(user.ID, &types.RecipeDetails{
		ID:          42,
		Title:       "Omelette",
		Ingredients: []types.Ingredient{{Name: "egg", Amount: 2}},
	})
	require.NoError(t, db.Create(recipe).Error)

	var loaded models.SavedRecipe
	require.NoError(t, db.First(&loaded, "spoonacular_id = ?", 42).Error)
	assert.Equal(t, "Omelette", loaded.Title)
	assert.Equal(t, "egg", loaded.Ingredients.Data[0].Name)
	assert.Empty(t, loaded.AnalyzedInstructions.Data)

	assert.NoError(t, HealthCheck(t.Context(), db))
}

func TestOpenTranslatesDuplicateKeys(t *testing.T) {
	db, err := Open(sqlite.Open(filepath.Join(t.TempDir(), "dup.db")), zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db, "unused", zap.NewNop().Sugar()))

	u := models.User{ID: uuid.New(), Name: "a", Email: "dup@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)

	u2 := models.User{ID: uuid.New(), Name: "b", Email: "dup@example.com", PasswordHash: "x"}
	assert.ErrorIs(t, db.Create(&u2).Error, gorm.ErrDuplicatedKey)
}

func TestMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "001_a_rollback.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600))
	}

	files, err := MigrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, files)

	_, err = MigrationFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestNewRedisClientDisabled(t *testing.T) {
	client, err := NewRedisClient(&config.Config{}, zap.NewNop().Sugar())
	assert.NoError(t, err)
	assert.Nil(t, client)
}
