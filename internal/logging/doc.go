// Package logging assembles structured slog loggers for the watcher.
//
// It owns the console and JSON handlers, resolves the "auto" format by
// checking whether output is an interactive terminal, and tags every record
// with the configured logging project. Context helpers attach the current
// scan tick so a single pass can be followed across components.
package logging
