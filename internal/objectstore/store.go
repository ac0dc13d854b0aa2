package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"filewatcher/internal/config"
)

// ErrObjectExists is returned by Put when the backend refused a conditional
// write because an object with the key appeared after the existence check.
var ErrObjectExists = errors.New("object already exists")

// PutOptions carries per-object metadata.
type PutOptions struct {
	ContentType string
	Size        int64
}

// Store is a flat key/value object store scoped to one bucket.
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, key string, body io.Reader, opts PutOptions) error
	Container() string
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend         string
	Container       string
	CredentialsFile string
	Endpoint        string
	Region          string
	UseSSL          bool
}

// OptionsFromConfig maps the [store] section of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{}
	}
	return Options{
		Backend:         cfg.Store.Backend,
		Container:       cfg.Store.Container,
		CredentialsFile: cfg.Store.CredentialsFile,
		Endpoint:        cfg.Store.Endpoint,
		Region:          cfg.Store.Region,
		UseSSL:          cfg.Store.UseSSL,
	}
}

// Open builds the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	if strings.TrimSpace(opts.Container) == "" {
		return nil, errors.New("object store container is required")
	}
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case config.BackendGCS, "":
		return NewGCS(ctx, opts)
	case config.BackendS3:
		return NewS3(ctx, opts)
	case config.BackendMinIO:
		return NewMinIO(opts)
	case config.BackendMemory:
		return NewMemory(opts.Container), nil
	default:
		return nil, fmt.Errorf("unsupported object store backend %q", opts.Backend)
	}
}
