package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnvFallbacks()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeWatch()
	c.normalizeLogging()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.Metrics.ListenAddr = strings.TrimSpace(c.Metrics.ListenAddr)
	return nil
}

// applyEnvFallbacks fills settings left empty by the file and the command
// line from FILEWATCHER_* variables.
func (c *Config) applyEnvFallbacks() {
	fallbacks := []struct {
		env   string
		field *string
	}{
		{"FILEWATCHER_SOURCE_DIR", &c.Paths.SourceDir},
		{"FILEWATCHER_ARCHIVE_DIR", &c.Paths.ArchiveDir},
		{"FILEWATCHER_CONTAINER", &c.Store.Container},
		{"FILEWATCHER_LOGGING_PROJECT", &c.Logging.Project},
		{"FILEWATCHER_FILE_TYPE", &c.Watch.FileType},
	}
	for _, fb := range fallbacks {
		if strings.TrimSpace(*fb.field) != "" {
			continue
		}
		if value, ok := os.LookupEnv(fb.env); ok {
			*fb.field = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceDir, err = expandPath(strings.TrimSpace(c.Paths.SourceDir)); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if c.Paths.ArchiveDir, err = expandPath(strings.TrimSpace(c.Paths.ArchiveDir)); err != nil {
		return fmt.Errorf("paths.archive_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultBackend
	}
	c.Store.Container = strings.TrimSpace(c.Store.Container)
	c.Store.Endpoint = strings.TrimSpace(c.Store.Endpoint)
	c.Store.Region = strings.TrimSpace(c.Store.Region)
	if c.Store.Region == "" && c.Store.Backend == BackendS3 {
		if value, ok := os.LookupEnv("AWS_REGION"); ok && strings.TrimSpace(value) != "" {
			c.Store.Region = strings.TrimSpace(value)
		} else {
			c.Store.Region = defaultS3Region
		}
	}

	c.Store.CredentialsFile = strings.TrimSpace(c.Store.CredentialsFile)
	if c.Store.CredentialsFile == "" {
		if value, ok := os.LookupEnv(credentialsEnv(c.Store.Backend)); ok {
			c.Store.CredentialsFile = strings.TrimSpace(value)
		}
	}
	if c.Store.CredentialsFile != "" {
		var err error
		if c.Store.CredentialsFile, err = expandPath(c.Store.CredentialsFile); err != nil {
			return fmt.Errorf("store.credentials_file: %w", err)
		}
	}
	return nil
}

// CredentialsEnv names the environment variable consulted for the
// credentials file of the given backend.
func CredentialsEnv(backend string) string {
	return credentialsEnv(backend)
}

func credentialsEnv(backend string) string {
	switch backend {
	case BackendS3, BackendMinIO:
		return "AWS_SHARED_CREDENTIALS_FILE"
	default:
		return "GOOGLE_APPLICATION_CREDENTIALS"
	}
}

func (c *Config) normalizeWatch() {
	c.Watch.FileType = strings.Trim(strings.TrimSpace(c.Watch.FileType), "/")
	c.Watch.PathMarker = strings.TrimSpace(c.Watch.PathMarker)
	if c.Watch.MaxCollisionAttempts == 0 {
		c.Watch.MaxCollisionAttempts = defaultMaxCollisionAttempts
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "":
		c.Logging.Format = defaultLogFormat
	case "auto", "console", "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if value, ok := os.LookupEnv("LOGLEVEL"); ok {
		c.Logging.Level = levelFromEnv(value)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Project = strings.TrimSpace(c.Logging.Project)
}

// levelFromEnv maps the LOGLEVEL convention (DEBUG, WARNING, ERROR) onto
// logger levels. Anything else means info.
func levelFromEnv(value string) string {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "DEBUG":
		return "debug"
	case "WARNING", "WARN":
		return "warn"
	case "ERROR":
		return "error"
	default:
		return "info"
	}
}

func (c *Config) normalizeJournal() error {
	if strings.TrimSpace(c.Journal.Path) == "" {
		return nil
	}
	var err error
	if c.Journal.Path, err = expandPath(strings.TrimSpace(c.Journal.Path)); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}
