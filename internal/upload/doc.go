// Package upload moves file content into an object store under a derived key,
// picking an alternate key when the original is already taken.
package upload
