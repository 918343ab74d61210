package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"), nil)
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndRecent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	entries := []Entry{
		{Filename: "a.py", Result: "human-written", Confidence: 12, Language: "python"},
		{Filename: "b.go", Result: "possible", Confidence: 55, Language: "go", Patterns: []string{"GenericNaming"}},
		{Filename: "c.js", Result: "likely-ai", Confidence: 88, Language: "javascript", Patterns: []string{"GenericNaming", "UniformStructure"}},
	}
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	for i, e := range entries {
		e.CheckedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.Append(ctx, e); err != nil {
			t.Fatalf("Append(%s) returned error: %v", e.Filename, err)
		}
	}

	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent(2) returned %d entries, want 2", len(got))
	}
	if got[0].Filename != "c.js" || got[1].Filename != "b.go" {
		t.Errorf("Recent() order = %s, %s; want newest first", got[0].Filename, got[1].Filename)
	}
	if len(got[0].Patterns) != 2 || got[0].Patterns[0] != "GenericNaming" {
		t.Errorf("Patterns = %v, want round-tripped pattern list", got[0].Patterns)
	}
	if got[0].Confidence != 88 || got[0].Language != "javascript" {
		t.Errorf("entry = %+v, want confidence 88 / javascript", got[0])
	}
}

func TestRecentEmptyStore(t *testing.T) {
	s := testStore(t)

	got, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() returned error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recent() on empty store = %v, want none", got)
	}
}

func TestStats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, e := range []Entry{
		{Filename: "a.py", Result: "human-written", Confidence: 10, Language: "python"},
		{Filename: "b.py", Result: "human-written", Confidence: 20, Language: "python"},
		{Filename: "c.py", Result: "likely-ai", Confidence: 90, Language: "python"},
	} {
		if err := s.Append(ctx, e); err != nil {
			t.Fatalf("Append() returned error: %v", err)
		}
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() returned error: %v", err)
	}

	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.ByResult["human-written"] != 2 || stats.ByResult["likely-ai"] != 1 {
		t.Errorf("ByResult = %v", stats.ByResult)
	}
	if stats.MeanConfidence != 40 {
		t.Errorf("MeanConfidence = %v, want 40", stats.MeanConfidence)
	}
}

func TestStatsEmptyStore(t *testing.T) {
	s := testStore(t)

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() returned error: %v", err)
	}
	if stats.Total != 0 || stats.MeanConfidence != 0 {
		t.Errorf("Stats() on empty store = %+v, want zero values", stats)
	}
}
