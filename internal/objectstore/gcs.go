package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GCS stores objects in a Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
}

// NewGCS authenticates with the service account key in opts.CredentialsFile.
// opts.Endpoint, when set, points the client at an emulator.
func NewGCS(ctx context.Context, opts Options) (*GCS, error) {
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCS{client: client, bucket: client.Bucket(opts.Container), name: opts.Container}, nil
}

func (g *GCS) Exists(ctx context.Context, key string) (bool, error) {
	_, err := g.bucket.Object(key).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("gcs stat %s: %w", key, err)
}

// Put writes body with a does-not-exist precondition so an object created
// between the existence check and the write is never overwritten.
func (g *GCS) Put(ctx context.Context, key string, body io.Reader, opts PutOptions) error {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	obj := g.bucket.Object(key).If(storage.Conditions{DoesNotExist: true})
	w := obj.NewWriter(wctx)
	if opts.ContentType != "" {
		w.ContentType = opts.ContentType
	}
	if _, err := io.Copy(w, body); err != nil {
		// Cancelling before Close aborts the upload; a bare Close would
		// commit whatever was already buffered.
		cancel()
		_ = w.Close()
		return gcsError(key, err)
	}
	if err := w.Close(); err != nil {
		return gcsError(key, err)
	}
	return nil
}

func (g *GCS) Container() string { return g.name }

func (g *GCS) Close() error { return g.client.Close() }

func gcsError(key string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
		return fmt.Errorf("gcs put %s: %w", key, ErrObjectExists)
	}
	return fmt.Errorf("gcs put %s: %w", key, err)
}
