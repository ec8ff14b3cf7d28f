package scheduler

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"remuxd/internal/media"
	"remuxd/internal/mux"
)

func TestStripCRCToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Movie [ABCD1234]", "Movie"},
		{"Movie [abcd1234]", "Movie"},
		{"Movie", "Movie"},
		{"Movie [ABC]", "Movie [ABC]"},
		{"Movie [NOTHEX12]", "Movie [NOTHEX12]"},
		{"[ABCD1234] Movie", "[ABCD1234] Movie"},
	}
	for _, tt := range tests {
		if got := StripCRCToken(tt.in); got != tt.want {
			t.Errorf("StripCRCToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStampCRC(t *testing.T) {
	if got := StampCRC("Movie", 0xDEADBEEF); got != "Movie [DEADBEEF]" {
		t.Fatalf("StampCRC = %q", got)
	}
	if got := StampCRC("Movie", 0xAB); got != "Movie [000000AB]" {
		t.Fatalf("StampCRC = %q", got)
	}
}

func TestFinalizeOverwriteWithCRC(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "Movie [12AB34CD].mkv")
	if err := os.WriteFile(source, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	output := []byte("remuxed output")
	temp := filepath.Join(dir, "Movie [12AB34CD]#123.mkv")
	if err := os.WriteFile(temp, output, 0o644); err != nil {
		t.Fatal(err)
	}

	job := media.Job{ID: "j1", Primary: media.PrimaryFile{Path: source}}
	plan := mux.Plan{
		TempPath:  temp,
		FinalPath: filepath.Join(dir, "Movie [12AB34CD].mkv"),
		Overwrite: true,
	}
	settings := media.Settings{OverwriteSource: true, AddCRC: true, RemoveOldCRC: true}

	finalPath, size, err := finalize(job, plan, settings)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, fmt.Sprintf("Movie [%08X].mkv", crc32.ChecksumIEEE(output)))
	if finalPath != want {
		t.Fatalf("finalPath = %q, want %q", finalPath, want)
	}
	if size != int64(len(output)) {
		t.Fatalf("size = %d, want %d", size, len(output))
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Fatal("source must be removed in overwrite mode")
	}
	got, err := os.ReadFile(finalPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(output) {
		t.Fatalf("final content = %q", got)
	}
}

func TestFinalizeDestinationMode(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "movie.mkv")
	if err := os.WriteFile(out, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	job := media.Job{ID: "j2", Primary: media.PrimaryFile{Path: "/elsewhere/movie.mkv"}}
	plan := mux.Plan{TempPath: out, FinalPath: out}

	finalPath, size, err := finalize(job, plan, media.Settings{DestinationDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if finalPath != out {
		t.Fatalf("finalPath = %q, want %q", finalPath, out)
	}
	if size != 4 {
		t.Fatalf("size = %d", size)
	}
}

func TestFinalizeMissingOutput(t *testing.T) {
	dir := t.TempDir()
	job := media.Job{ID: "j3", Primary: media.PrimaryFile{Path: filepath.Join(dir, "movie.mkv")}}
	plan := mux.Plan{
		TempPath:  filepath.Join(dir, "missing.mkv"),
		FinalPath: filepath.Join(dir, "movie.mkv"),
		Overwrite: true,
	}
	if _, _, err := finalize(job, plan, media.Settings{}); err == nil {
		t.Fatal("expected error for missing output")
	}
}
