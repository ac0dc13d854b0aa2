// Package pathderive maps local file paths to remote object keys.
//
// Everything here is pure string manipulation: no filesystem or network
// access. Keys are always slash-separated regardless of the host OS.
package pathderive
