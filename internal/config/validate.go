package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.SourceDir == "" {
		return errors.New("paths.source_dir is required (set it in the config file or pass --source)")
	}
	if c.Paths.ArchiveDir == "" {
		return errors.New("paths.archive_dir is required (set it in the config file or pass --archive)")
	}
	if filepath.Clean(c.Paths.SourceDir) == filepath.Clean(c.Paths.ArchiveDir) {
		return errors.New("paths.archive_dir must differ from paths.source_dir")
	}
	if isWithin(c.Paths.SourceDir, c.Paths.ArchiveDir) {
		return errors.New("paths.source_dir must not be inside paths.archive_dir")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendGCS, BackendS3, BackendMinIO, BackendMemory:
	default:
		return fmt.Errorf("store.backend: unsupported value %q (want gcs, s3, minio, or memory)", c.Store.Backend)
	}
	if c.Store.Container == "" {
		return errors.New("store.container is required (set it in the config file or pass --target)")
	}
	if c.RequiresCredentials() && c.Store.CredentialsFile == "" {
		return fmt.Errorf("store.credentials_file is required. Set %s or edit the config file", credentialsEnv(c.Store.Backend))
	}
	if c.Store.Backend == BackendMinIO && c.Store.Endpoint == "" {
		return errors.New("store.endpoint must be set when store.backend is minio")
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.PollIntervalSeconds <= 0 {
		return errors.New("watch.poll_interval_seconds must be positive")
	}
	if c.Watch.MaxCollisionAttempts < 1 {
		return errors.New("watch.max_collision_attempts must be at least 1")
	}
	if strings.Contains(c.Watch.FileType, "/") {
		return errors.New("watch.file_type must be a single path segment")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if c.Logging.Project == "" {
		return errors.New("logging.project is required (set it in the config file or pass --logging-project)")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// isWithin reports whether path lies strictly below root.
func isWithin(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
