package testsupport

import (
	"path/filepath"
	"testing"

	"filewatcher/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The store backend is the in-memory one so no credentials are needed.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "source")
	cfgVal.Paths.ArchiveDir = filepath.Join(base, "archive")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Store.Backend = config.BackendMemory
	cfgVal.Store.Container = "test-bucket"
	cfgVal.Watch.PollIntervalSeconds = 0.01
	cfgVal.Logging.Project = "test-project"
	cfgVal.Logging.Format = "json"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFileType sets the fixed category on the test config.
func WithFileType(category string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Watch.FileType = category
	}
}

// WithPathMarker sets the required path marker on the test config.
func WithPathMarker(marker string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Watch.PathMarker = marker
	}
}

// WithArchiveInsideSource nests the archive directory under the source tree.
func WithArchiveInsideSource() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.ArchiveDir = filepath.Join(b.cfg.Paths.SourceDir, "archive")
	}
}

// WithMaxCollisions overrides the collision attempt bound.
func WithMaxCollisions(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Watch.MaxCollisionAttempts = n
	}
}

// WithoutJournal disables the SQLite journal.
func WithoutJournal() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
