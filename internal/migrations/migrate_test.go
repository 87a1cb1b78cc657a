package migrations

import (
	"path/filepath"
	"testing"

	"github.com/Simplici0/plantecon/internal/db"
)

func TestUpCreatesSchema(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "migrate-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if err := Up(database); err != nil {
		t.Fatalf("rerun migrations: %v", err)
	}

	v, err := Version(database)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != 3 {
		t.Fatalf("schema version = %d, want 3", v)
	}

	for _, table := range []string{"users", "catalog_defaults", "lang_factors", "scaling_exponents", "cost_factors", "working_capital_splits", "analyses"} {
		var n int
		if err := database.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n); err != nil {
			t.Fatalf("query table %s: %v", table, err)
		}
		if n != 1 {
			t.Fatalf("table %s missing", table)
		}
	}
}
