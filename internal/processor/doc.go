// Package processor runs the per-file lifecycle: lock, validate, upload, and
// archive. A file is moved out of the watched tree only after its content is
// stored remotely; every other outcome leaves it where it was.
package processor
