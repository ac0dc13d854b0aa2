package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the watched, archive, and local state directories.
type Paths struct {
	SourceDir  string `toml:"source_dir"`
	ArchiveDir string `toml:"archive_dir"`
	StateDir   string `toml:"state_dir"`
}

// Store contains configuration for the remote object store.
type Store struct {
	// Backend selects the object store implementation: gcs, s3, minio, or memory.
	Backend string `toml:"backend"`
	// Container is the bucket that receives uploaded objects.
	Container       string `toml:"container"`
	CredentialsFile string `toml:"credentials_file"`
	Endpoint        string `toml:"endpoint"`
	Region          string `toml:"region"`
	UseSSL          bool   `toml:"use_ssl"`
}

// Watch contains the scan loop and file lifecycle knobs.
type Watch struct {
	PollIntervalSeconds float64 `toml:"poll_interval_seconds"`
	// FileType, when set, replaces the path-derived category of every key.
	FileType string `toml:"file_type"`
	// PathMarker must appear (case-insensitively) in a file path for it to be
	// uploaded. Empty accepts every path.
	PathMarker           string `toml:"path_marker"`
	MaxCollisionAttempts int    `toml:"max_collision_attempts"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format  string `toml:"format"`
	Level   string `toml:"level"`
	Project string `toml:"project"`
}

// Journal contains configuration for the local upload journal.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Metrics contains configuration for the Prometheus endpoint.
type Metrics struct {
	ListenAddr string `toml:"listen_addr"`
}

// Config encapsulates all configuration values for the watcher.
//
// Configuration sections by subsystem:
//   - Paths: source tree, archive tree, and local state directory
//   - Store: object store backend, bucket, and credentials
//   - Watch: polling interval, category override, and collision bounds
//   - Logging: log format, level, and project identifier
//   - Journal: SQLite upload journal
//   - Metrics: optional Prometheus listener
type Config struct {
	Paths   Paths   `toml:"paths"`
	Store   Store   `toml:"store"`
	Watch   Watch   `toml:"watch"`
	Logging Logging `toml:"logging"`
	Journal Journal `toml:"journal"`
	Metrics Metrics `toml:"metrics"`
}

// Overrides carries command-line values that take precedence over the file.
// Zero values leave the loaded configuration untouched.
type Overrides struct {
	SourceDir           string
	ArchiveDir          string
	Container           string
	LoggingProject      string
	FileType            string
	Backend             string
	PollIntervalSeconds float64
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	return LoadWithOverrides(path, Overrides{})
}

// LoadWithOverrides behaves like Load but applies command-line overrides
// before normalization and validation.
func LoadWithOverrides(path string, overrides Overrides) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.apply(overrides)

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) apply(o Overrides) {
	if v := strings.TrimSpace(o.SourceDir); v != "" {
		c.Paths.SourceDir = v
	}
	if v := strings.TrimSpace(o.ArchiveDir); v != "" {
		c.Paths.ArchiveDir = v
	}
	if v := strings.TrimSpace(o.Container); v != "" {
		c.Store.Container = v
	}
	if v := strings.TrimSpace(o.LoggingProject); v != "" {
		c.Logging.Project = v
	}
	if v := strings.TrimSpace(o.FileType); v != "" {
		c.Watch.FileType = v
	}
	if v := strings.TrimSpace(o.Backend); v != "" {
		c.Store.Backend = v
	}
	if o.PollIntervalSeconds > 0 {
		c.Watch.PollIntervalSeconds = o.PollIntervalSeconds
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("filewatcher.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the archive and state directories. The source
// directory is never created: a missing source tree is a startup error.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ArchiveDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PollInterval returns the sleep between scan ticks.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Watch.PollIntervalSeconds * float64(time.Second))
}

// JournalPath returns the SQLite journal location.
func (c *Config) JournalPath() string {
	if strings.TrimSpace(c.Journal.Path) != "" {
		return c.Journal.Path
	}
	return filepath.Join(c.Paths.StateDir, "journal.db")
}

// RequiresCredentials reports whether the configured backend reads a
// credentials file.
func (c *Config) RequiresCredentials() bool {
	return c.Store.Backend != BackendMemory
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
