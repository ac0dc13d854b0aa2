package preflight

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"filewatcher/internal/objectstore"
)

// storeCheckKey is looked up, never written, to confirm bucket access.
const storeCheckKey = ".filewatcher-preflight"

const storeCheckTimeout = 15 * time.Second

// CheckSourceDirectory verifies that the watched directory exists and can be
// listed and read. It is never created.
func CheckSourceDirectory(name, path string) Result {
	return checkPath(name, path, true, unix.R_OK|unix.X_OK, "read ok")
}

// CheckCreatableDirectory creates the directory if needed and verifies it is
// readable and writable.
func CheckCreatableDirectory(name, path string) Result {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return failed(name, path, "create: %v", err)
	}
	return CheckDirectoryAccess(name, path)
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkPath(name, path, true, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckCredentialsFile verifies that the credentials file is present and readable.
func CheckCredentialsFile(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	return checkPath(name, path, false, unix.R_OK, "readable")
}

// CheckArchiveDevice reports whether archiving can rename in place or has to
// copy across filesystems. It never fails; the result is informational.
func CheckArchiveDevice(name, sourceDir, archiveDir string) Result {
	var src, dst unix.Stat_t
	if unix.Stat(sourceDir, &src) != nil || unix.Stat(archiveDir, &dst) != nil {
		return Result{Name: name, Passed: true, Detail: "unknown (directories not accessible yet)"}
	}
	if src.Dev == dst.Dev {
		return Result{Name: name, Passed: true, Detail: "same filesystem (rename)"}
	}
	return Result{Name: name, Passed: true, Detail: "different filesystems (verified copy, then delete)"}
}

// CheckStore confirms the bucket answers an existence lookup with a single
// attempt bounded by storeCheckTimeout.
func CheckStore(ctx context.Context, store objectstore.Store) Result {
	const name = "Object store"
	if store == nil {
		return Result{Name: name, Detail: "not configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, storeCheckTimeout)
	defer cancel()

	if _, err := store.Exists(checkCtx, storeCheckKey); err != nil {
		return failed(name, store.Container(), "%v", err)
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", store.Container())}
}

func checkPath(name, path string, wantDir bool, access uint32, okDetail string) Result {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return failed(name, path, "does not exist")
	case err != nil:
		return failed(name, path, "stat: %v", err)
	case wantDir && !info.IsDir():
		return failed(name, path, "is not a directory")
	case !wantDir && !info.Mode().IsRegular():
		return failed(name, path, "not a regular file")
	}
	if err := unix.Access(path, access); err != nil {
		return failed(name, path, "insufficient permissions: %v", err)
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

func failed(name, subject, format string, args ...any) Result {
	return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s)", subject, fmt.Sprintf(format, args...))}
}
