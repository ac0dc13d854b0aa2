// Command filewatcher polls a directory tree, uploads completed files to an
// object store, and archives them once the upload succeeds.
//
// Subcommands:
//
//	run               watch and upload until interrupted (--once for a single pass)
//	check             run preflight checks against the configuration
//	journal list      show recorded uploads
//	journal summary   totals per status
//	config init       write a sample configuration file
//	config validate   load and validate the configuration
package main
