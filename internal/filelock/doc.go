// Package filelock guards per-file work with an OS advisory lock so files that
// another process is still writing are skipped instead of read half-finished.
package filelock
