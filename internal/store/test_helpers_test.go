package store_test

import (
	"path/filepath"
	"testing"

	"github.com/elstrm2/NutritionTracker/internal/db"
	"github.com/elstrm2/NutritionTracker/internal/store"
)

func newTestStore(t *testing.T) *store.SQLStore {
	t.Helper()
	sqldb, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "tracker.db"), 0)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })
	if err := db.ApplyMigrations(sqldb, db.DriverSQLite); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	s, err := store.New(sqldb, db.DriverSQLite)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}
