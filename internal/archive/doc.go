// Package archive moves files that were uploaded successfully out of the
// watched tree, mirroring the destination key's directory layout under the
// archive root.
package archive
