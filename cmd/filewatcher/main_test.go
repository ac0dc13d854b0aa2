package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	configPath string
	sourceDir  string
	archiveDir string
	stateDir   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("LOGLEVEL", "ERROR")

	env := &cliTestEnv{
		configPath: filepath.Join(base, "config.toml"),
		sourceDir:  filepath.Join(base, "outbox"),
		archiveDir: filepath.Join(base, "archive"),
		stateDir:   filepath.Join(base, "state"),
	}
	if err := os.MkdirAll(env.sourceDir, 0o755); err != nil {
		t.Fatalf("mkdir source: %v", err)
	}

	content := fmt.Sprintf(`[paths]
source_dir = %q
archive_dir = %q
state_dir = %q

[store]
backend = "memory"
container = "cli-bucket"

[watch]
poll_interval_seconds = 0.01

[logging]
format = "json"
project = "cli-test"
`, env.sourceDir, env.archiveDir, env.stateDir)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSourceFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestRunOnceUploadsAndJournals(t *testing.T) {
	env := setupCLITestEnv(t)
	src := filepath.Join(env.sourceDir, "acme", "2024", "report.csv")
	writeSourceFile(t, src, "a,b\n1,2\n")

	if _, _, err := runCLI(t, []string{"run", "--once"}, env.configPath); err != nil {
		t.Fatalf("run --once: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source to be archived, stat err=%v", err)
	}
	archived := filepath.Join(env.archiveDir, "acme", "2024", "report.csv")
	if _, err := os.Stat(archived); err != nil {
		t.Fatalf("expected archived file at %s: %v", archived, err)
	}

	out, _, err := runCLI(t, []string{"journal", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("journal list: %v", err)
	}
	requireContains(t, out, "acme/2024/report.csv")
	requireContains(t, out, "archived")

	out, _, err = runCLI(t, []string{"journal", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("journal list --json: %v", err)
	}
	var entries []map[string]any
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode json: %v (%q)", err, out)
	}
	if len(entries) != 1 || entries[0]["status"] != "archived" || entries[0]["digest"] == "" {
		t.Fatalf("entries = %v", entries)
	}

	out, _, err = runCLI(t, []string{"journal", "summary"}, env.configPath)
	if err != nil {
		t.Fatalf("journal summary: %v", err)
	}
	requireContains(t, out, "Entries: 1")
	requireContains(t, out, "Uploaded: 8 B")
}

func TestRunFlagsOverrideConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	otherArchive := filepath.Join(t.TempDir(), "elsewhere")
	src := filepath.Join(env.sourceDir, "acme", "data.json")
	writeSourceFile(t, src, "{}")

	args := []string{"run", "--once", "--archive", otherArchive, "--file-type", "ledger", "--logging-project", "override"}
	if _, _, err := runCLI(t, args, env.configPath); err != nil {
		t.Fatalf("run --once: %v", err)
	}

	if _, err := os.Stat(filepath.Join(otherArchive, "ledger", "data.json")); err != nil {
		t.Fatalf("expected archive under overridden directory: %v", err)
	}
}

func TestRunRejectsMissingSource(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(t.TempDir(), "missing")

	_, _, err := runCLI(t, []string{"run", "--once", "--source", missing}, env.configPath)
	if err == nil {
		t.Fatal("expected preflight failure for missing source")
	}
	requireContains(t, err.Error(), "Source directory")
}

func TestJournalListRejectsUnknownStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"journal", "list", "--status", "bogus"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestJournalListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"journal", "list", "--status", "upload_failed"}, env.configPath)
	if err != nil {
		t.Fatalf("journal list: %v", err)
	}
	requireContains(t, out, "No journal entries")
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Source directory")
	requireContains(t, out, "cli-bucket (reachable)")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Bucket: cli-bucket (memory)")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestReportErrorExitCodes(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"run", "--once", "--source", filepath.Join(t.TempDir(), "missing")}, env.configPath)
	if err == nil {
		t.Fatal("expected preflight failure")
	}
	if code := reportError(err); code != exitConfig {
		t.Fatalf("exit code = %d, want %d", code, exitConfig)
	}
	if code := reportError(errors.New("upload backend down")); code != exitFailure {
		t.Fatalf("exit code = %d, want %d", code, exitFailure)
	}
}
