package helpers

import (
	"fmt"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/andrescamacho/solarion-go/internal/adapters/persistence"
	"github.com/andrescamacho/solarion-go/internal/infrastructure/database"
)

// NewTestDB opens a migrated in-memory SQLite database that is closed when
// the test ends. Each call returns an isolated database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// TableNames lists every table the schema migrates, children before parents
func TableNames() []string {
	models := persistence.AllModels()
	names := make([]string, 0, len(models))
	for i := len(models) - 1; i >= 0; i-- {
		if tabler, ok := models[i].(schema.Tabler); ok {
			names = append(names, tabler.TableName())
		}
	}
	return names
}

// ClearTables deletes every row from every table of db
func ClearTables(db *gorm.DB) error {
	for _, table := range TableNames() {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}
