package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/harikantbajaj/labsight/internal/report"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_EmptySnapshot(t *testing.T) {
	store := testStore(t)
	snap, err := store.Snapshot(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap) != 0 {
		t.Errorf("expected an empty snapshot, got %d parameters", len(snap))
	}
}

func TestSQLiteStore_AppendAndSnapshot(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	err := store.Append(ctx, "u1", "r1", []report.Classification{
		{Parameter: "glucose", Value: 95, Verdict: report.VerdictNormal},
		{Parameter: "hemoglobin", Value: 14.2, Verdict: report.VerdictNormal},
	}, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := store.Snapshot(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(snap))
	}
	pts := snap["glucose"]
	if len(pts) != 1 || pts[0].Value != 95 {
		t.Errorf("expected one glucose point of 95, got %+v", pts)
	}
	if !pts[0].Timestamp.Equal(at) {
		t.Errorf("expected timestamp %v, got %v", at, pts[0].Timestamp)
	}
}

func TestSQLiteStore_SnapshotOrderedByTime(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Appended newest first; snapshots must still come back ascending.
	for i, v := range []float64{102, 98, 95} {
		at := base.Add(-time.Duration(i) * 24 * time.Hour)
		err := store.Append(ctx, "u1", "r", []report.Classification{
			{Parameter: "glucose", Value: v},
		}, at)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	snap, err := store.Snapshot(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pts := snap["glucose"]
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	want := []float64{95, 98, 102}
	for i, w := range want {
		if pts[i].Value != w {
			t.Errorf("point[%d]: expected %v, got %v", i, w, pts[i].Value)
		}
	}
}

func TestSQLiteStore_UsersAreIsolated(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	at := time.Now().UTC()

	if err := store.Append(ctx, "u1", "r1", []report.Classification{{Parameter: "glucose", Value: 95}}, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Append(ctx, "u2", "r2", []report.Classification{{Parameter: "glucose", Value: 120}}, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := store.Snapshot(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pts := snap["glucose"]
	if len(pts) != 1 || pts[0].Value != 95 {
		t.Errorf("expected only u1's point, got %+v", pts)
	}
}

func TestSQLiteStore_EmptyAppendIsNoop(t *testing.T) {
	store := testStore(t)
	if err := store.Append(context.Background(), "u1", "r1", nil, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSQLiteStore_UnclassifiableStillRecorded(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	err := store.Append(ctx, "u1", "r1", []report.Classification{
		{Parameter: "ferritin", Value: 80, Verdict: report.VerdictUnclassifiable},
	}, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, err := store.Snapshot(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap["ferritin"]) != 1 {
		t.Errorf("expected the unclassifiable point to be recorded, got %+v", snap)
	}
}
