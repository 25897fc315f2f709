package service_test

import (
	"path/filepath"
	"testing"

	"github.com/elstrm2/NutritionTracker/internal/db"
	"github.com/elstrm2/NutritionTracker/internal/service"
	"github.com/elstrm2/NutritionTracker/internal/store"
	"github.com/elstrm2/NutritionTracker/internal/testutil"
)

func newTestStore(t *testing.T) *store.SQLStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.db")
	sqldb, err := db.Open(db.DriverSQLite, path, 0)
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

func newTestTracker(t *testing.T) (*service.Tracker, *testutil.StubClock) {
	t.Helper()
	clock := testutil.FixedClock()
	tr := service.NewTracker(newTestStore(t), service.NewNopLogger(), clock, testutil.NewStubIDGenerator())
	return tr, clock
}

func ptr[T any](v T) *T {
	return &v
}
