package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"remuxd/internal/scheduler"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	records := []scheduler.HistoryRecord{
		{
			JobID:      "job-1",
			SourcePath: "/media/a.mkv",
			OutputPath: "/media/a [1A2B3C4D].mkv",
			Status:     scheduler.StatusCompleted,
			Message:    "finished",
			SizeBytes:  1024,
			StartedAt:  base,
			FinishedAt: base.Add(time.Minute),
		},
		{
			JobID:      "job-2",
			SourcePath: "/media/b.mkv",
			Status:     scheduler.StatusError,
			Message:    "mkvmerge exited with code 2",
			StartedAt:  base.Add(2 * time.Minute),
			FinishedAt: base.Add(3 * time.Minute),
		},
	}
	for _, rec := range records {
		if err := s.Record(ctx, rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Newest first.
	if entries[0].JobID != "job-2" || entries[1].JobID != "job-1" {
		t.Fatalf("order = %s, %s", entries[0].JobID, entries[1].JobID)
	}
	if entries[1].OutputPath != "/media/a [1A2B3C4D].mkv" {
		t.Fatalf("output path = %q", entries[1].OutputPath)
	}
	if entries[1].SizeBytes != 1024 {
		t.Fatalf("size = %d", entries[1].SizeBytes)
	}
	if !entries[1].FinishedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("finished at = %v", entries[1].FinishedAt)
	}
	if entries[0].Status != string(scheduler.StatusError) {
		t.Fatalf("status = %q", entries[0].Status)
	}

	limited, err := s.List(ctx, 1)
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(limited) != 1 || limited[0].JobID != "job-2" {
		t.Fatalf("limited = %+v", limited)
	}
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, scheduler.HistoryRecord{
		JobID:      "job-1",
		SourcePath: "/media/a.mkv",
		Status:     scheduler.StatusCompleted,
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	removed, err := s.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d", removed)
	}
	entries, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty history, got %d", len(entries))
	}
}
