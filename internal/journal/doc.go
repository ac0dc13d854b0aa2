// Package journal keeps a local SQLite audit trail of upload attempts.
//
// Every file that passes validation gets a row describing where it went and
// how its lifecycle ended. Rows with status archive_failed identify files that
// are already stored remotely but still sit in the source tree; they will be
// uploaded again under a suffixed key on the next pass unless an operator
// moves them.
//
// The journal is observational. Failing to write a row never changes what
// happens to the file.
package journal
