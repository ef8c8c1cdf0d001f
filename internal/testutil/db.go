package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tarunkumar2005/fomi/internal/db"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// NewSeededTestDB is NewTestDB with the built-in themes already seeded.
func NewSeededTestDB(t *testing.T) *db.DB {
	t.Helper()

	database := NewTestDB(t)
	if _, err := db.SeedBuiltInThemes(context.Background(), database); err != nil {
		t.Fatalf("seed built-in themes: %v", err)
	}
	return database
}
