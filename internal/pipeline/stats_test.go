package pipeline

import (
	"testing"
	"time"
)

func TestStageStats_RecordAndSnapshot(t *testing.T) {
	s := NewStageStats(time.Hour)
	s.Record("extract", 100*time.Millisecond)
	s.Record("extract", 200*time.Millisecond)
	s.Record("extract", 300*time.Millisecond)

	snap := s.Snapshot()
	agg, ok := snap["extract"]
	if !ok {
		t.Fatal("expected an extract aggregate")
	}
	if agg.Count != 3 {
		t.Errorf("expected count 3, got %d", agg.Count)
	}
	if agg.MinMs != 100 || agg.MaxMs != 300 {
		t.Errorf("expected min 100 max 300, got %d and %d", agg.MinMs, agg.MaxMs)
	}
	if agg.AvgMs != 200 {
		t.Errorf("expected avg 200, got %v", agg.AvgMs)
	}
	if agg.P50Ms != 200 {
		t.Errorf("expected p50 200, got %v", agg.P50Ms)
	}
}

func TestStageStats_StagesAreIndependent(t *testing.T) {
	s := NewStageStats(time.Hour)
	s.Record("extract", 500*time.Millisecond)
	s.Record("map", 5*time.Millisecond)

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(snap))
	}
	if snap["extract"].MaxMs != 500 || snap["map"].MaxMs != 5 {
		t.Errorf("expected per-stage aggregates, got %+v", snap)
	}
}

func TestStageStats_EmptySnapshot(t *testing.T) {
	s := NewStageStats(time.Hour)
	if snap := s.Snapshot(); len(snap) != 0 {
		t.Errorf("expected an empty snapshot, got %d stages", len(snap))
	}
}

func TestStageStats_OldSamplesExpire(t *testing.T) {
	s := NewStageStats(10 * time.Millisecond)
	s.Record("extract", 100*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	snap := s.Snapshot()
	if _, ok := snap["extract"]; ok {
		t.Error("expected expired samples to drop out of the snapshot")
	}
}

func TestStageStats_NegativeDurationClampedToZero(t *testing.T) {
	s := NewStageStats(time.Hour)
	s.Record("extract", -5*time.Millisecond)
	snap := s.Snapshot()
	if snap["extract"].MinMs != 0 {
		t.Errorf("expected negative durations to clamp to 0, got %d", snap["extract"].MinMs)
	}
}
