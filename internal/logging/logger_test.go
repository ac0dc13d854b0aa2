package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filewatcher/internal/config"
	"filewatcher/internal/logging"
)

func TestNewFromConfigNil(t *testing.T) {
	logger, err := logging.NewFromConfig(nil)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
}

func TestNewFromConfigDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "json"
	cfg.Logging.Project = "proj"
	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller", logging.String(logging.FieldPath, "/tmp/a b.txt"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if strings.Contains(text, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", text)
	}
	if !strings.Contains(text, "INFO message without caller") {
		t.Fatalf("expected level and message, got %q", text)
	}
	if !strings.Contains(text, `path="/tmp/a b.txt"`) {
		t.Fatalf("expected quoted path attribute, got %q", text)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerPrefixesComponentAndTick(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-component.log")
	base, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		Project:     "proj",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithTick(context.Background(), 7)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(base, "scanner"))
	logger.Info("pass complete")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "[tick 7] scanner: pass complete") {
		t.Fatalf("expected tick and component prefix, got %q", text)
	}
	if strings.Contains(text, "project=") {
		t.Fatalf("console output should not repeat the project, got %q", text)
	}
}

func TestJSONLoggerCarriesProject(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "json.log")
	logger, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "debug",
		Project:     "billing-prod",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Warn("upload failed", logging.Error(errors.New("boom")), logging.String(logging.FieldKey, "a/b.txt"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &record); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, content)
	}
	if record["project"] != "billing-prod" {
		t.Fatalf("project = %v, want billing-prod", record["project"])
	}
	if record["level"] != "warn" {
		t.Fatalf("level = %v, want warn", record["level"])
	}
	if record["msg"] != "upload failed" {
		t.Fatalf("msg = %v", record["msg"])
	}
	if record["error"] != "boom" {
		t.Fatalf("error = %v, want boom", record["error"])
	}
	if record["key"] != "a/b.txt" {
		t.Fatalf("key = %v", record["key"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts field, got %v", record)
	}
}

func TestLevelFiltering(t *testing.T) {
	cases := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{level: "debug", wantDebug: true, wantInfo: true, wantWarn: true},
		{level: "info", wantInfo: true, wantWarn: true},
		{level: "warning", wantWarn: true},
		{level: "error"},
		{level: "bogus", wantInfo: true, wantWarn: true},
	}
	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			logPath := filepath.Join(t.TempDir(), "level.log")
			logger, err := logging.New(logging.Options{
				Format:      "console",
				Level:       tc.level,
				OutputPaths: []string{logPath},
			})
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
			logger.Debug("debug-line")
			logger.Info("info-line")
			logger.Warn("warn-line")
			logger.Error("error-line")

			content, err := os.ReadFile(logPath)
			if err != nil {
				t.Fatalf("read log file: %v", err)
			}
			text := string(content)
			check := func(marker string, want bool) {
				if got := strings.Contains(text, marker); got != want {
					t.Fatalf("level %s: %s present=%v, want %v", tc.level, marker, got, want)
				}
			}
			check("debug-line", tc.wantDebug)
			check("info-line", tc.wantInfo)
			check("warn-line", tc.wantWarn)
			check("error-line", true)
		})
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "archive failed", "archive_failed",
		logging.String(logging.FieldErrorHint, "check archive permissions"),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record[logging.FieldEventType] != "archive_failed" {
		t.Fatalf("event_type = %v", record[logging.FieldEventType])
	}
	if record[logging.FieldErrorHint] != "check archive permissions" {
		t.Fatalf("error_hint = %v", record[logging.FieldErrorHint])
	}
	if record[logging.FieldImpact] == nil {
		t.Fatal("expected default impact field")
	}
}

func TestTickFromContext(t *testing.T) {
	if _, ok := logging.TickFromContext(context.Background()); ok {
		t.Fatal("expected no tick on bare context")
	}
	ctx := logging.WithTick(context.Background(), 42)
	tick, ok := logging.TickFromContext(ctx)
	if !ok || tick != 42 {
		t.Fatalf("tick = %d, %v; want 42, true", tick, ok)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should not be enabled")
	}
	logging.WithContext(context.Background(), nil).Info("ignored")
}

func TestConsoleLoggerRendersSizesAndDurations(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-sizes.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("uploaded",
		logging.Int64("size_bytes", 2048),
		logging.Int("collisions", 1),
		logging.Duration("elapsed", 1234567890),
		logging.Error(nil),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	for _, want := range []string{`size_bytes="2.0 KiB"`, "collisions=1", "elapsed=1.235s"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in %q", want, text)
		}
	}
	if strings.Contains(text, "error=") {
		t.Fatalf("nil error should be omitted, got %q", text)
	}
}
