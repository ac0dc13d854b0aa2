package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLockUnavailable marks a file another process currently holds an exclusive lock on.
	ErrLockUnavailable = errors.New("lock unavailable")
	ErrValidation      = errors.New("validation error")
	ErrUpload          = errors.New("upload error")
	ErrArchive         = errors.New("archive error")
	ErrConfiguration   = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Hint returns a short operator-facing next step for a classified error.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrLockUnavailable):
		return "file is still being written; it will be retried next pass"
	case errors.Is(err, ErrUpload):
		return "check object store credentials and connectivity"
	case errors.Is(err, ErrArchive):
		return "check archive directory permissions and free space"
	case errors.Is(err, ErrConfiguration):
		return "fix the configuration file or command-line flags"
	case errors.Is(err, ErrValidation):
		return "inspect the source file"
	default:
		return "check logs for details"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "lifecycle failure"
	}
	return strings.Join(parts, ": ")
}
