package archive

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/sys/unix"

	"filewatcher/internal/fileutil"
	"filewatcher/internal/lifecycle"
	"filewatcher/internal/logging"
)

// Mover relocates uploaded files into the archive tree.
type Mover struct {
	root   string
	logger *slog.Logger
}

// NewMover returns a mover rooted at archiveRoot.
func NewMover(archiveRoot string, logger *slog.Logger) *Mover {
	return &Mover{root: archiveRoot, logger: logging.NewComponentLogger(logger, "archive")}
}

// Root returns the archive root directory.
func (m *Mover) Root() string { return m.root }

// Target returns where filePath lands for destinationKey: the key's directory
// under the archive root, keeping the file's original base name.
func (m *Mover) Target(filePath, destinationKey string) string {
	dir := path.Dir(destinationKey)
	if dir == "." || dir == "/" {
		dir = ""
	}
	return filepath.Join(m.root, filepath.FromSlash(dir), filepath.Base(filePath))
}

// Archive moves filePath into the archive tree and returns the new location.
// An existing file at the target is replaced.
func (m *Mover) Archive(filePath, destinationKey string) (string, error) {
	target := m.Target(filePath, destinationKey)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		err = lifecycle.Wrap(lifecycle.ErrArchive, "archive", "mkdir", filepath.Dir(target), err)
		m.logFailure(filePath, target, err)
		return "", err
	}
	if info, err := os.Stat(target); err == nil && info.Mode().IsRegular() {
		logging.WarnWithContext(m.logger, "archive target exists, replacing", "archive_replace",
			logging.String(logging.FieldPath, filePath),
			logging.String("archive_path", target),
			logging.String(logging.FieldImpact, "previous archived copy is overwritten"),
			logging.String(logging.FieldErrorHint, "remote copy is kept under its own key"),
		)
	}
	if err := moveFile(filePath, target); err != nil {
		err = lifecycle.Wrap(lifecycle.ErrArchive, "archive", "move", filePath, err)
		m.logFailure(filePath, target, err)
		return "", err
	}
	m.logger.Info("file archived",
		logging.String(logging.FieldPath, filePath),
		logging.String("archive_path", target),
	)
	return target, nil
}

func (m *Mover) logFailure(filePath, target string, err error) {
	logging.ErrorWithContext(m.logger, "archive failed", "archive_failed",
		logging.String(logging.FieldPath, filePath),
		logging.String("archive_path", target),
		logging.String(logging.FieldErrorHint, lifecycle.Hint(err)),
		logging.Error(err),
	)
}

// moveFile renames within a filesystem and falls back to a verified copy
// followed by removal when source and target sit on different devices.
func moveFile(sourcePath, targetPath string) error {
	err := os.Rename(sourcePath, targetPath)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && errors.Is(linkErr.Err, unix.EXDEV) {
		if err := fileutil.CopyFileVerified(sourcePath, targetPath); err != nil {
			return fmt.Errorf("copy file across devices: %w", err)
		}
		if err := os.Remove(sourcePath); err != nil {
			return fmt.Errorf("remove source after copy: %w", err)
		}
		return nil
	}
	return fmt.Errorf("move file: %w", err)
}
