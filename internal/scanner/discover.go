package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Discover walks sourceRoot and returns candidate regular files in lexical
// order. The archive subtree is skipped, as are names without a dot and names
// starting with one. Unreadable entries below the root are reported through
// the joined error while the walk continues.
func Discover(sourceRoot, archiveRoot string) ([]string, error) {
	root := filepath.Clean(sourceRoot)
	archive := ""
	if archiveRoot != "" {
		archive = filepath.Clean(archiveRoot)
	}

	var (
		paths    []string
		walkErrs []error
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			walkErrs = append(walkErrs, fmt.Errorf("walk %s: %w", path, err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if archive != "" && path != root && sameOrUnder(path, archive) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !Candidate(d.Name()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk source %s: %w", sourceRoot, err)
	}
	return paths, errors.Join(walkErrs...)
}

// Candidate reports whether a file name is eligible for upload: it must
// contain a dot and must not be hidden.
func Candidate(name string) bool {
	return strings.Contains(name, ".") && !strings.HasPrefix(name, ".")
}

func sameOrUnder(path, root string) bool {
	if path == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
