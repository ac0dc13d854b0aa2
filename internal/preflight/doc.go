// Package preflight provides readiness checks for the filesystem paths,
// credentials, and object store the watcher depends on.
//
// The run command executes RunAll and CheckStore once before the first scan.
// Any failure is fatal: the process exits rather than polling a tree it
// cannot archive or a bucket it cannot reach. "filewatcher config validate"
// prints the same results without starting the loop.
package preflight
