// Package metrics exposes Prometheus counters for the watcher: files by
// terminal state, collisions, uploaded bytes, and scan pass timings.
package metrics
