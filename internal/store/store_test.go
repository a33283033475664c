package store

import (
	"path/filepath"
	"testing"
)

func TestSnapshotLifecycle(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	id, err := db.CreateSnapshot("dev")
	if err != nil {
		t.Fatalf("create snapshot: %v", err)
	}
	if err := db.InsertMetric(id, "event_count", 120, ""); err != nil {
		t.Fatalf("insert metric: %v", err)
	}
	if err := db.InsertMetric(id, "error_rate", 0.08, "2026-03-01..2026-03-10"); err != nil {
		t.Fatalf("insert metric: %v", err)
	}

	latest, err := db.GetSnapshotN(1)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if latest == nil || latest.ID != id {
		t.Fatalf("expected latest snapshot %d, got %+v", id, latest)
	}
	if latest.Version != "dev" {
		t.Errorf("version = %q, want dev", latest.Version)
	}

	metrics, err := db.GetMetrics(id)
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	if len(metrics) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(metrics))
	}
}

func TestGetSnapshotN_BeyondHistory(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	s, err := db.GetSnapshotN(1)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if s != nil {
		t.Errorf("expected nil for empty history, got %+v", s)
	}
}

func TestCompare_SharedMetricsOnly(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	prev, err := db.CreateSnapshot("dev")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	curr, err := db.CreateSnapshot("dev")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	mustInsert := func(id int64, name string, value float64) {
		t.Helper()
		if err := db.InsertMetric(id, name, value, ""); err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
	}
	mustInsert(prev, "event_count", 100)
	mustInsert(prev, "error_rate", 0.10)
	mustInsert(prev, "classification:building", 4)
	mustInsert(curr, "event_count", 150)
	mustInsert(curr, "error_rate", 0.05)
	mustInsert(curr, "classification:debugging", 2)

	deltas, err := db.Compare(prev, curr)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	// Only the two names present in both snapshots, sorted by name.
	if len(deltas) != 2 {
		t.Fatalf("expected 2 deltas, got %+v", deltas)
	}
	if deltas[0].Name != "error_rate" || deltas[1].Name != "event_count" {
		t.Errorf("delta order: %q, %q", deltas[0].Name, deltas[1].Name)
	}
	if deltas[1].Change != 50 {
		t.Errorf("event_count change = %v, want 50", deltas[1].Change)
	}
	if deltas[0].Change > -0.04 || deltas[0].Change < -0.06 {
		t.Errorf("error_rate change = %v, want -0.05", deltas[0].Change)
	}
}

func TestOpen_CreatesParentDirAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tooltime.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	// Re-running migrations on an existing database must be a no-op.
	if err := db.Migrate(); err != nil {
		t.Fatalf("re-migrate: %v", err)
	}

	if _, err := db.CreateSnapshot("dev"); err != nil {
		t.Fatalf("create snapshot after open: %v", err)
	}
}
