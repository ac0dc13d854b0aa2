package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"filewatcher/internal/config"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func TestLoadWithOverridesUsesEnvCredentialsAndDefaults(t *testing.T) {
	unsetEnv(t, "LOGLEVEL")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	creds := filepath.Join(tempHome, "sa.json")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", creds)

	cfg, resolved, exists, err := config.LoadWithOverrides("", config.Overrides{
		SourceDir:      "~/outbox",
		ArchiveDir:     "~/archive",
		Container:      "bucket-a",
		LoggingProject: "proj",
	})
	if err != nil {
		t.Fatalf("LoadWithOverrides returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.SourceDir != filepath.Join(tempHome, "outbox") {
		t.Fatalf("unexpected source dir: %q", cfg.Paths.SourceDir)
	}
	if cfg.Paths.ArchiveDir != filepath.Join(tempHome, "archive") {
		t.Fatalf("unexpected archive dir: %q", cfg.Paths.ArchiveDir)
	}
	wantState := filepath.Join(tempHome, ".local", "share", "filewatcher")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Store.Backend != config.BackendGCS {
		t.Fatalf("expected gcs backend by default, got %q", cfg.Store.Backend)
	}
	if cfg.Store.CredentialsFile != creds {
		t.Fatalf("expected credentials from env, got %q", cfg.Store.CredentialsFile)
	}
	if cfg.PollInterval().Seconds() != 1 {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval())
	}
	if cfg.Watch.MaxCollisionAttempts != config.Default().Watch.MaxCollisionAttempts {
		t.Fatalf("unexpected collision bound: %d", cfg.Watch.MaxCollisionAttempts)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected info level, got %q", cfg.Logging.Level)
	}
	if !cfg.Journal.Enabled {
		t.Fatal("expected journal enabled by default")
	}
	if cfg.JournalPath() != filepath.Join(wantState, "journal.db") {
		t.Fatalf("unexpected journal path: %q", cfg.JournalPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.ArchiveDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if _, err := os.Stat(cfg.Paths.SourceDir); !os.IsNotExist(err) {
		t.Fatalf("expected source dir to stay absent, got %v", err)
	}
}

func TestEnvFallbacksFillEmptySettings(t *testing.T) {
	unsetEnv(t, "LOGLEVEL")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("FILEWATCHER_SOURCE_DIR", filepath.Join(tempHome, "env-src"))
	t.Setenv("FILEWATCHER_ARCHIVE_DIR", filepath.Join(tempHome, "env-archive"))
	t.Setenv("FILEWATCHER_CONTAINER", "env-bucket")
	t.Setenv("FILEWATCHER_LOGGING_PROJECT", "env-proj")

	cfg, _, _, err := config.LoadWithOverrides("", config.Overrides{
		Backend:   config.BackendMemory,
		Container: "flag-bucket",
	})
	if err != nil {
		t.Fatalf("LoadWithOverrides returned error: %v", err)
	}
	if cfg.Paths.SourceDir != filepath.Join(tempHome, "env-src") {
		t.Fatalf("unexpected source dir: %q", cfg.Paths.SourceDir)
	}
	if cfg.Logging.Project != "env-proj" {
		t.Fatalf("unexpected project: %q", cfg.Logging.Project)
	}
	if cfg.Store.Container != "flag-bucket" {
		t.Fatalf("flag should win over env, got %q", cfg.Store.Container)
	}
}

func TestLoadCustomPath(t *testing.T) {
	unsetEnv(t, "LOGLEVEL", "AWS_REGION")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "filewatcher.toml")

	type payload struct {
		Paths struct {
			SourceDir  string `toml:"source_dir"`
			ArchiveDir string `toml:"archive_dir"`
		} `toml:"paths"`
		Store struct {
			Backend         string `toml:"backend"`
			Container       string `toml:"container"`
			CredentialsFile string `toml:"credentials_file"`
		} `toml:"store"`
		Watch struct {
			PollIntervalSeconds float64 `toml:"poll_interval_seconds"`
			FileType            string  `toml:"file_type"`
			PathMarker          string  `toml:"path_marker"`
		} `toml:"watch"`
		Logging struct {
			Level   string `toml:"level"`
			Project string `toml:"project"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.SourceDir = filepath.Join(tempDir, "src")
	custom.Paths.ArchiveDir = filepath.Join(tempDir, "src", "archive")
	custom.Store.Backend = "S3"
	custom.Store.Container = "uploads"
	custom.Store.CredentialsFile = filepath.Join(tempDir, "aws-credentials")
	custom.Watch.PollIntervalSeconds = 2.5
	custom.Watch.FileType = "/invoices/"
	custom.Watch.PathMarker = "  file_type "
	custom.Logging.Level = "DEBUG"
	custom.Logging.Project = "billing"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Store.Backend != config.BackendS3 {
		t.Fatalf("expected backend to be lowercased, got %q", cfg.Store.Backend)
	}
	if cfg.Store.Region != "us-east-1" {
		t.Fatalf("expected default s3 region, got %q", cfg.Store.Region)
	}
	if cfg.Watch.FileType != "invoices" {
		t.Fatalf("expected trimmed file type, got %q", cfg.Watch.FileType)
	}
	if cfg.Watch.PathMarker != "file_type" {
		t.Fatalf("expected trimmed path marker, got %q", cfg.Watch.PathMarker)
	}
	if cfg.PollInterval().Milliseconds() != 2500 {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval())
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestPathMarkerIsOptIn(t *testing.T) {
	if marker := config.Default().Watch.PathMarker; marker != "" {
		t.Fatalf("default path marker = %q, want empty", marker)
	}
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	sample, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(sample), `# path_marker = "file_type"`) {
		t.Fatalf("sample config should document the file_type marker:\n%s", sample)
	}
}

func TestOverridesTakePrecedenceOverFile(t *testing.T) {
	unsetEnv(t, "LOGLEVEL")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "filewatcher.toml")
	contents := strings.Join([]string{
		"[paths]",
		`source_dir = "` + filepath.Join(tempDir, "file-src") + `"`,
		`archive_dir = "` + filepath.Join(tempDir, "file-archive") + `"`,
		"[store]",
		`backend = "memory"`,
		`container = "file-bucket"`,
		"[logging]",
		`project = "file-project"`,
	}, "\n")
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.LoadWithOverrides(configPath, config.Overrides{
		SourceDir:           filepath.Join(tempDir, "flag-src"),
		Container:           "flag-bucket",
		FileType:            "reports",
		PollIntervalSeconds: 10,
	})
	if err != nil {
		t.Fatalf("LoadWithOverrides returned error: %v", err)
	}
	if cfg.Paths.SourceDir != filepath.Join(tempDir, "flag-src") {
		t.Fatalf("expected flag source dir, got %q", cfg.Paths.SourceDir)
	}
	if cfg.Paths.ArchiveDir != filepath.Join(tempDir, "file-archive") {
		t.Fatalf("expected file archive dir, got %q", cfg.Paths.ArchiveDir)
	}
	if cfg.Store.Container != "flag-bucket" {
		t.Fatalf("expected flag container, got %q", cfg.Store.Container)
	}
	if cfg.Logging.Project != "file-project" {
		t.Fatalf("expected file project, got %q", cfg.Logging.Project)
	}
	if cfg.Watch.FileType != "reports" {
		t.Fatalf("expected flag file type, got %q", cfg.Watch.FileType)
	}
	if cfg.Watch.PollIntervalSeconds != 10 {
		t.Fatalf("expected flag poll interval, got %v", cfg.Watch.PollIntervalSeconds)
	}
	if cfg.RequiresCredentials() {
		t.Fatal("memory backend should not require credentials")
	}
}

func TestLogLevelEnvOverridesConfig(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{env: "DEBUG", want: "debug"},
		{env: "WARNING", want: "warn"},
		{env: "ERROR", want: "error"},
		{env: "verbose", want: "info"},
	}
	for _, tc := range tests {
		t.Run(tc.env, func(t *testing.T) {
			t.Setenv("LOGLEVEL", tc.env)
			dir := t.TempDir()
			cfg, _, _, err := config.LoadWithOverrides(filepath.Join(dir, "missing.toml"), config.Overrides{
				SourceDir:      filepath.Join(dir, "src"),
				ArchiveDir:     filepath.Join(dir, "archive"),
				Container:      "bucket",
				LoggingProject: "proj",
				Backend:        config.BackendMemory,
			})
			if err != nil {
				t.Fatalf("LoadWithOverrides returned error: %v", err)
			}
			if cfg.Logging.Level != tc.want {
				t.Fatalf("LOGLEVEL=%s: got %q want %q", tc.env, cfg.Logging.Level, tc.want)
			}
		})
	}
}

func TestValidateRejectsIncompleteConfig(t *testing.T) {
	base := func() config.Config {
		cfg := config.Default()
		cfg.Paths.SourceDir = "/data/src"
		cfg.Paths.ArchiveDir = "/data/archive"
		cfg.Paths.StateDir = "/data/state"
		cfg.Store.Container = "bucket"
		cfg.Store.CredentialsFile = "/etc/creds.json"
		cfg.Logging.Project = "proj"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "missing source", mutate: func(c *config.Config) { c.Paths.SourceDir = "" }, wantErr: "paths.source_dir"},
		{name: "missing archive", mutate: func(c *config.Config) { c.Paths.ArchiveDir = "" }, wantErr: "paths.archive_dir"},
		{name: "archive equals source", mutate: func(c *config.Config) { c.Paths.ArchiveDir = "/data/src" }, wantErr: "must differ"},
		{name: "source inside archive", mutate: func(c *config.Config) { c.Paths.SourceDir = "/data/archive/in" }, wantErr: "inside paths.archive_dir"},
		{name: "unknown backend", mutate: func(c *config.Config) { c.Store.Backend = "ftp" }, wantErr: "store.backend"},
		{name: "missing container", mutate: func(c *config.Config) { c.Store.Container = "" }, wantErr: "store.container"},
		{name: "missing credentials", mutate: func(c *config.Config) { c.Store.CredentialsFile = "" }, wantErr: "GOOGLE_APPLICATION_CREDENTIALS"},
		{name: "minio without endpoint", mutate: func(c *config.Config) { c.Store.Backend = config.BackendMinIO }, wantErr: "store.endpoint"},
		{name: "zero poll interval", mutate: func(c *config.Config) { c.Watch.PollIntervalSeconds = 0 }, wantErr: "poll_interval_seconds"},
		{name: "zero collisions", mutate: func(c *config.Config) { c.Watch.MaxCollisionAttempts = 0 }, wantErr: "max_collision_attempts"},
		{name: "nested file type", mutate: func(c *config.Config) { c.Watch.FileType = "a/b" }, wantErr: "single path segment"},
		{name: "missing project", mutate: func(c *config.Config) { c.Logging.Project = "" }, wantErr: "logging.project"},
	}

	valid := base()
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected base config to validate, got %v", err)
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("unexpected error: got %q want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestArchiveInsideSourceIsAllowed(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.SourceDir = "/data/src"
	cfg.Paths.ArchiveDir = "/data/src/archive"
	cfg.Store.Backend = config.BackendMemory
	cfg.Store.Container = "bucket"
	cfg.Logging.Project = "proj"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected nested archive to validate, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	unsetEnv(t, "LOGLEVEL")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", filepath.Join(tempHome, "sa.json"))

	path := filepath.Join(tempHome, "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[store]") {
		t.Fatalf("sample config missing store section: %s", contents)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load, got %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Paths.SourceDir != filepath.Join(tempHome, "outbox") {
		t.Fatalf("unexpected sample source dir: %q", cfg.Paths.SourceDir)
	}
}
