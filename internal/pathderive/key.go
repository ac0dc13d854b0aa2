package pathderive

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrOutsideRoot reports a path that does not live under the source root.
	ErrOutsideRoot = errors.New("path outside source root")
	// ErrEmptyKey reports a path that resolves to no object name.
	ErrEmptyKey = errors.New("empty destination key")
)

// Key is the slash-separated object name a file is uploaded under.
type Key struct {
	Category     string
	RelativePath string
}

// String renders the key as "category/remainder", or just the remainder when
// no category was resolved.
func (k Key) String() string {
	if k.Category == "" {
		return k.RelativePath
	}
	return k.Category + "/" + k.RelativePath
}

// CategoryResolved reports whether the key carries a leading category segment.
func (k Key) CategoryResolved() bool {
	return k.Category != ""
}

// DeriveCategory returns fixedCategory when set, otherwise the first segment
// of a relative path that has at least two segments.
func DeriveCategory(relativePath, fixedCategory string) string {
	if fixedCategory != "" {
		return fixedCategory
	}
	segments := splitSegments(relativePath)
	if len(segments) >= 2 {
		return segments[0]
	}
	return ""
}

// DeriveRemainder returns the segments after the first, falling back to the
// whole relative path when nothing follows the first segment.
func DeriveRemainder(relativePath string) string {
	segments := splitSegments(relativePath)
	if len(segments) == 0 {
		return ""
	}
	if rest := strings.Join(segments[1:], "/"); rest != "" {
		return rest
	}
	return strings.Join(segments, "/")
}

// BuildDestinationKey strips sourceRoot from absolutePath and resolves the
// category and remainder of the result.
func BuildDestinationKey(absolutePath, sourceRoot, fixedCategory string) (Key, error) {
	rel, err := relativeTo(absolutePath, sourceRoot)
	if err != nil {
		return Key{}, err
	}
	return keyFor(rel, DeriveCategory(rel, fixedCategory))
}

func keyFor(rel, category string) (Key, error) {
	remainder := DeriveRemainder(rel)
	if remainder == "" {
		return Key{}, fmt.Errorf("%w: %q", ErrEmptyKey, rel)
	}
	return Key{Category: category, RelativePath: remainder}, nil
}

func relativeTo(absolutePath, sourceRoot string) (string, error) {
	root := filepath.Clean(sourceRoot)
	target := filepath.Clean(absolutePath)
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(target, prefix) {
		return "", fmt.Errorf("%w: %s not under %s", ErrOutsideRoot, absolutePath, sourceRoot)
	}
	return filepath.ToSlash(strings.TrimPrefix(target, prefix)), nil
}

func splitSegments(relativePath string) []string {
	raw := strings.Split(filepath.ToSlash(relativePath), "/")
	segments := raw[:0]
	for _, s := range raw {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
