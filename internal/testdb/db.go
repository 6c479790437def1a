package testdb

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pageza/fridgechef/backend/internal/database"
)

// migrationsDir is relative to the package under test, which always sits two
// levels below the module root.
const migrationsDir = "../../migrations"

// TestDB wraps a test database instance
type TestDB struct {
	DB        *gorm.DB
	Container testcontainers.Container
}

// Close cleans up the test database
func (td *TestDB) Close() error {
	if td.DB != nil {
		if sqlDB, err := td.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if td.Container != nil {
		return td.Container.Terminate(context.Background())
	}
	return nil
}

// SQLite opens a migrated SQLite database in a temp dir
func SQLite(t *testing.T) *TestDB {
	t.Helper()

	db, err := database.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, migrationsDir, zap.NewNop().Sugar()))

	testDB := &TestDB{DB: db}
	t.Cleanup(func() { _ = testDB.Close() })
	return testDB
}

// Postgres starts a pgvector container and applies the SQL migrations to it.
// Tests using it need Docker and are built with the integration tag.
func Postgres(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	testDB := &TestDB{Container: container}
	t.Cleanup(func() {
		if err := testDB.Close(); err != nil {
			t.Logf("Error cleaning up test database: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test sslmode=disable", host, port.Port())
	db, err := database.Open(postgres.Open(dsn), zap.NewNop().Sugar())
	require.NoError(t, err)
	testDB.DB = db

	require.NoError(t, database.RunMigrations(db, migrationsDir, zap.NewNop().Sugar()))
	return testDB
}
