package database

import (
	"path/filepath"
	"testing"
)

func TestNewDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	defer db.Close()

	if db.Path != dbPath {
		t.Errorf("Expected path %s, got %s", dbPath, db.Path)
	}
	var timeout int
	if err := db.SQL.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil || timeout != 5000 {
		t.Errorf("Expected busy_timeout 5000, got %d (%v)", timeout, err)
	}

	for _, table := range []string{"kv_store", "execution_metrics"} {
		var name string
		err := db.SQL.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s to exist: %v", table, err)
		}
	}

	t.Run("Reopen", func(t *testing.T) {
		// Running migrations twice must be a no-op.
		again, err := NewDB(dbPath)
		if err != nil {
			t.Fatalf("Reopening database failed: %v", err)
		}
		again.Close()
	})
}
