package mux

import (
	"testing"
	"time"

	"remuxd/internal/media"
)

func TestResolveOutputOverwrite(t *testing.T) {
	job := media.Job{Primary: media.PrimaryFile{Path: "/media/Show S01E01.mkv"}}
	settings := media.Settings{OverwriteSource: true}
	now := time.Unix(1700000000, 0)
	plan := ResolveOutput(job, settings, now)
	if !plan.Overwrite {
		t.Fatal("expected overwrite mode")
	}
	if plan.TempPath != "/media/Show S01E01#1700000000.mkv" {
		t.Fatalf("TempPath = %q", plan.TempPath)
	}
	if plan.FinalPath != "/media/Show S01E01.mkv" {
		t.Fatalf("FinalPath = %q", plan.FinalPath)
	}
}

func TestResolveOutputEmptyDestinationIsOverwrite(t *testing.T) {
	job := media.Job{Primary: media.PrimaryFile{Path: "/media/movie.avi"}}
	plan := ResolveOutput(job, media.Settings{}, time.Unix(1, 0))
	if !plan.Overwrite {
		t.Fatal("empty destination must resolve to overwrite mode")
	}
	// Output extension is always .mkv regardless of the source container.
	if plan.FinalPath != "/media/movie.mkv" {
		t.Fatalf("FinalPath = %q", plan.FinalPath)
	}
}

func TestResolveOutputOverwriteWithDestination(t *testing.T) {
	job := media.Job{Primary: media.PrimaryFile{Path: "/media/movie.mkv"}}
	settings := media.Settings{DestinationDir: "/out", OverwriteSource: true}
	plan := ResolveOutput(job, settings, time.Unix(1700000000, 0))
	if !plan.Overwrite {
		t.Fatal("expected overwrite mode")
	}
	// The configured destination wins over the source directory even when
	// the source is replaced.
	if plan.TempPath != "/out/movie#1700000000.mkv" {
		t.Fatalf("TempPath = %q", plan.TempPath)
	}
	if plan.FinalPath != "/out/movie.mkv" {
		t.Fatalf("FinalPath = %q", plan.FinalPath)
	}
}

func TestResolveOutputDestination(t *testing.T) {
	job := media.Job{Primary: media.PrimaryFile{Path: "/media/movie.mp4"}}
	settings := media.Settings{DestinationDir: "/out"}
	plan := ResolveOutput(job, settings, time.Unix(1, 0))
	if plan.Overwrite {
		t.Fatal("destination mode must not overwrite")
	}
	if plan.TempPath != "/out/movie.mkv" || plan.FinalPath != "/out/movie.mkv" {
		t.Fatalf("plan = %+v", plan)
	}
}
