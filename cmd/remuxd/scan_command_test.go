package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"remuxd/internal/jobfile"
)

func TestScanCommandListsAndWritesJobs(t *testing.T) {
	env := setupCLITestEnv(t)

	mediaDir := filepath.Join(env.root, "media")
	for _, name := range []string{"the.big.lebowski.1998.mkv", "notes.txt"} {
		path := filepath.Join(mediaDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	jobsPath := filepath.Join(env.root, "jobs.toml")
	out, _, err := runCLI(t, []string{"scan", mediaDir, "--jobs", jobsPath}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "The Big Lebowski 1998")
	if strings.Contains(out, "notes.txt") {
		t.Fatalf("non-media file listed:\n%s", out)
	}

	file, err := jobfile.Load(jobsPath)
	if err != nil {
		t.Fatalf("load written jobs file: %v", err)
	}
	if len(file.Jobs) != 1 {
		t.Fatalf("jobs = %d", len(file.Jobs))
	}
	if file.Jobs[0].Primary != filepath.Join(mediaDir, "the.big.lebowski.1998.mkv") {
		t.Fatalf("primary = %q", file.Jobs[0].Primary)
	}
}

func TestScanCommandEmptyDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	empty := filepath.Join(env.root, "empty")
	if err := os.MkdirAll(empty, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	out, _, err := runCLI(t, []string{"scan", empty}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "No matching files found")
}
