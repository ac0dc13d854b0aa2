package filelock

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gofrs/flock"

	"filewatcher/internal/lifecycle"
	"filewatcher/internal/logging"
)

// Guard runs actions on files only while holding an exclusive, non-blocking
// advisory lock on them.
type Guard struct {
	logger *slog.Logger
}

// NewGuard builds a guard that reports contention through logger.
func NewGuard(logger *slog.Logger) *Guard {
	return &Guard{logger: logging.NewComponentLogger(logger, "filelock")}
}

// WithExclusiveLock locks path without creating it, opens a read handle, and
// runs action with that handle. When the file cannot be opened or another
// process holds the lock, action is not run and the returned error wraps
// lifecycle.ErrLockUnavailable. A panic inside action is returned as an error.
// The handle is closed and the lock released on every path.
func (g *Guard) WithExclusiveLock(path string, action func(*os.File) error) (err error) {
	lock := flock.New(path, flock.SetFlag(os.O_RDWR))
	locked, lockErr := lock.TryLock()
	if lockErr != nil || !locked {
		if lockErr == nil {
			lockErr = fmt.Errorf("held by another process")
		}
		g.logger.Info("file is locked, will be retried later",
			logging.String(logging.FieldPath, path),
			logging.Error(lockErr),
		)
		return lifecycle.Wrap(lifecycle.ErrLockUnavailable, "filelock", "try lock", path, lockErr)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			g.logger.Warn("failed to release file lock",
				logging.String(logging.FieldPath, path),
				logging.Error(unlockErr),
			)
		}
	}()

	handle, openErr := os.Open(path)
	if openErr != nil {
		return lifecycle.Wrap(lifecycle.ErrLockUnavailable, "filelock", "open", path, openErr)
	}
	defer handle.Close()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action on %s panicked: %v", path, r)
		}
	}()
	return action(handle)
}
