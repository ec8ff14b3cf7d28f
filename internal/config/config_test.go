package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"remuxd/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "remuxd")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.LogDir != filepath.Join(wantState, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.DestinationDir != "" {
		t.Fatalf("expected empty destination by default, got %q", cfg.Paths.DestinationDir)
	}
	if !cfg.Output.OverwriteSource {
		t.Fatal("expected overwrite_source enabled by default")
	}
	if cfg.Output.WarningsExitCode != 1 {
		t.Fatalf("unexpected warnings exit code: %d", cfg.Output.WarningsExitCode)
	}
	if cfg.Mux.MkvmergeBinary != "mkvmerge" || cfg.Mux.MkvpropeditBinary != "mkvpropedit" {
		t.Fatalf("unexpected binaries: %q / %q", cfg.Mux.MkvmergeBinary, cfg.Mux.MkvpropeditBinary)
	}
	if cfg.Mux.MaxParallelJobs != 2 {
		t.Fatalf("unexpected max parallel jobs: %d", cfg.Mux.MaxParallelJobs)
	}
	if !cfg.Mux.UseFastPath {
		t.Fatal("expected fast path enabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if len(cfg.Scan.Extensions) == 0 || cfg.Scan.Extensions[0] != "mkv" {
		t.Fatalf("unexpected scan extensions: %v", cfg.Scan.Extensions)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	dest := filepath.Join(tempHome, "out")

	path := filepath.Join(tempHome, "remuxd.toml")
	content := `
[paths]
destination_dir = "` + dest + `"

[output]
overwrite_source = false
add_crc = true

[mux]
max_parallel_jobs = 4

[filters]
keep_audio_enabled = true
keep_audio_languages = [" English ", "english", "jpn"]

[logging]
format = "JSON"

[scan]
extensions = [".MKV", "mp4", "mkv"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Paths.DestinationDir != dest {
		t.Fatalf("destination = %q", cfg.Paths.DestinationDir)
	}
	if cfg.Output.OverwriteSource || !cfg.Output.AddCRC {
		t.Fatalf("output = %+v", cfg.Output)
	}
	if cfg.Mux.MaxParallelJobs != 4 {
		t.Fatalf("max parallel jobs = %d", cfg.Mux.MaxParallelJobs)
	}
	// Language lists dedupe case-insensitively, preserving first casing.
	want := []string{"English", "jpn"}
	if len(cfg.Filters.KeepAudioLanguages) != 2 ||
		cfg.Filters.KeepAudioLanguages[0] != want[0] ||
		cfg.Filters.KeepAudioLanguages[1] != want[1] {
		t.Fatalf("keep audio languages = %v", cfg.Filters.KeepAudioLanguages)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("logging format = %q", cfg.Logging.Format)
	}
	if len(cfg.Scan.Extensions) != 2 || cfg.Scan.Extensions[0] != "mkv" || cfg.Scan.Extensions[1] != "mp4" {
		t.Fatalf("scan extensions = %v", cfg.Scan.Extensions)
	}

	settings := cfg.Settings()
	if settings.OverwriteMode() {
		t.Fatal("destination mode expected")
	}
	if !settings.AudioFilterActive() {
		t.Fatal("audio filter should be active")
	}
}

func TestValidateRejectsFilterWithoutLanguages(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, "remuxd.toml")
	content := `
[filters]
keep_audio_enabled = true
keep_audio_languages = []
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "keep_audio_languages") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[mux]") {
		t.Fatal("sample config missing [mux] section")
	}
}

func TestHelperPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(cfg.HistoryDBPath()) != cfg.Paths.StateDir {
		t.Fatalf("history db path = %q", cfg.HistoryDBPath())
	}
	if filepath.Dir(cfg.SessionLogPath()) != cfg.Paths.LogDir {
		t.Fatalf("session log path = %q", cfg.SessionLogPath())
	}
}
