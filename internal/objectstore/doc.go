// Package objectstore adapts remote blob stores to the small surface the
// uploader needs: an existence check and a write that never replaces an
// existing object.
//
// Backends: Google Cloud Storage (the default), Amazon S3, MinIO, and an
// in-memory store. Open selects one from configuration.
package objectstore
