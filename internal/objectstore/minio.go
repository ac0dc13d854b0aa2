package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIO stores objects on a MinIO server.
type MinIO struct {
	client *minio.Client
	bucket string
}

// NewMinIO connects to opts.Endpoint (host:port) using the AWS-style
// credentials file in opts.CredentialsFile.
func NewMinIO(opts Options) (*MinIO, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, errors.New("minio endpoint is required")
	}
	secure := opts.UseSSL
	if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		endpoint, secure = rest, false
	} else if rest, ok := strings.CutPrefix(endpoint, "https://"); ok {
		endpoint, secure = rest, true
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewFileAWSCredentials(opts.CredentialsFile, ""),
		Secure: secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinIO{client: client, bucket: opts.Container}, nil
}

func (m *MinIO) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, fmt.Errorf("minio stat %s: %w", key, err)
}

// Put sends If-None-Match: * so the server rejects the write when key is
// already taken.
func (m *MinIO) Put(ctx context.Context, key string, body io.Reader, opts PutOptions) error {
	size := opts.Size
	if size <= 0 {
		size = -1
	}
	putOpts := minio.PutObjectOptions{ContentType: opts.ContentType}
	putOpts.SetMatchETagExcept("*")
	_, err := m.client.PutObject(ctx, m.bucket, key, body, size, putOpts)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "PreconditionFailed" || resp.StatusCode == http.StatusPreconditionFailed {
			return fmt.Errorf("minio put %s: %w", key, ErrObjectExists)
		}
		return fmt.Errorf("minio put %s: %w", key, err)
	}
	return nil
}

func (m *MinIO) Container() string { return m.bucket }

func (m *MinIO) Close() error { return nil }
