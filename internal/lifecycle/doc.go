// Package lifecycle defines the error markers shared by the watcher's
// components. Callers classify failures with errors.Is against the exported
// sentinels; Wrap attaches component and operation context without losing the
// marker or the underlying cause.
package lifecycle
