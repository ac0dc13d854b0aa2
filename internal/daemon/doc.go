// Package daemon wires configuration, the object store, the journal, and
// metrics into the scan loop and runs it for the lifetime of the process.
//
// Keep orchestration here: per-file behaviour lives in processor, discovery
// and pacing in scanner. The daemon only decides what is built and how long
// it runs.
package daemon
