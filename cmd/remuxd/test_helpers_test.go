package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	root       string
	configPath string
	logDir     string
	stateDir   string
}

func setupCLITestEnv(t *testing.T) cliTestEnv {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)

	env := cliTestEnv{
		root:       root,
		configPath: filepath.Join(root, "remuxd.toml"),
		logDir:     filepath.Join(root, "logs"),
		stateDir:   filepath.Join(root, "state"),
	}
	content := fmt.Sprintf(`[paths]
log_dir = %q
state_dir = %q
`, env.logDir, env.stateDir)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	cmd.SetArgs(args)

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
