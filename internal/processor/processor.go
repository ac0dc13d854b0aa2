package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"filewatcher/internal/archive"
	"filewatcher/internal/filelock"
	"filewatcher/internal/fileutil"
	"filewatcher/internal/journal"
	"filewatcher/internal/lifecycle"
	"filewatcher/internal/logging"
	"filewatcher/internal/metrics"
	"filewatcher/internal/pathderive"
	"filewatcher/internal/upload"
)

// Options wires a Processor's collaborators.
type Options struct {
	Deriver  *pathderive.Deriver
	Guard    *filelock.Guard
	Planner  *upload.Planner
	Mover    *archive.Mover
	Recorder journal.Recorder
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	// PathMarker must appear in a file path, ignoring case, for the file to
	// be uploaded. Empty accepts every path.
	PathMarker string
}

// Processor drives a single file from discovery to archive.
type Processor struct {
	deriver  *pathderive.Deriver
	guard    *filelock.Guard
	planner  *upload.Planner
	mover    *archive.Mover
	recorder journal.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
	marker   string
}

// New builds a processor. A nil Recorder disables journaling.
func New(opts Options) *Processor {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = journal.Nop{}
	}
	return &Processor{
		deriver:  opts.Deriver,
		guard:    opts.Guard,
		planner:  opts.Planner,
		mover:    opts.Mover,
		recorder: recorder,
		metrics:  opts.Metrics,
		logger:   logging.NewComponentLogger(opts.Logger, "processor"),
		marker:   opts.PathMarker,
	}
}

// Process locks path, validates it, uploads it, and archives it once the
// upload succeeded. Every expected outcome is reported through Result.State;
// the error is reserved for unexpected failures.
func (p *Processor) Process(ctx context.Context, path string) (Result, error) {
	result := Result{Path: path}
	err := p.guard.WithExclusiveLock(path, func(f *os.File) error {
		return p.handleLocked(ctx, f, &result)
	})
	switch {
	case err == nil:
	case errors.Is(err, lifecycle.ErrLockUnavailable):
		result.State = StateDeferred
		result.Err = err
		err = nil
	default:
		result.State = StateError
		result.Err = err
	}
	p.metrics.ObserveFile(string(result.State))
	return result, err
}

func (p *Processor) handleLocked(ctx context.Context, f *os.File, result *Result) error {
	path := result.Path
	logger := logging.WithContext(ctx, p.logger).With(logging.String(logging.FieldPath, path))

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	result.SizeBytes = info.Size()

	if info.Size() == 0 {
		result.State = StateRejectedEmpty
		p.reject(logger, "empty file", "rejected_empty")
		return nil
	}
	if isUnder(path, p.mover.Root()) {
		result.State = StateRejectedArchived
		p.reject(logger, "ignoring file inside the archive tree", "rejected_archived")
		return nil
	}
	if !p.matchesMarker(path) {
		result.State = StateRejectedInvalid
		p.reject(logger, "invalid path, marker not found", "rejected_invalid",
			logging.String("marker", p.marker))
		return nil
	}

	key, err := p.deriver.Key(path)
	if err != nil {
		result.State = StateRejectedInvalid
		p.reject(logger, "cannot derive destination key", "rejected_invalid", logging.Error(err))
		return nil
	}
	if !key.CategoryResolved() {
		logging.WarnWithContext(logger, "cannot find the category for file", "category_missing",
			logging.String(logging.FieldKey, key.String()),
			logging.String(logging.FieldImpact, "object is stored without a category prefix"),
			logging.String(logging.FieldErrorHint, "place files in a category subdirectory or set file_type"),
		)
	}
	result.DestinationKey = key.String()

	logger.Info("uploading file",
		logging.String(logging.FieldKey, result.DestinationKey),
		logging.Int64("size_bytes", result.SizeBytes),
	)
	outcome := p.planner.UploadWithCollisionHandling(ctx, f, result.DestinationKey)
	result.Collisions = outcome.Collisions
	digest := p.digest(logger, f)
	if !outcome.OK() {
		result.State = StateUploadFailed
		result.Err = outcome.Err
		logging.ErrorWithContext(logger, "cannot archive, upload failed", "upload_failed",
			logging.String(logging.FieldKey, result.DestinationKey),
			logging.String(logging.FieldState, string(result.State)),
			logging.String(logging.FieldErrorHint, lifecycle.Hint(outcome.Err)),
			logging.Error(outcome.Err),
		)
		p.record(ctx, logger, result, digest)
		return nil
	}
	result.FinalKey = outcome.FinalKey
	p.metrics.ObserveUpload(result.SizeBytes, result.Collisions)

	archivePath, err := p.mover.Archive(path, result.DestinationKey)
	if err != nil {
		result.State = StateArchiveFailed
		result.Err = err
		p.record(ctx, logger, result, digest)
		return nil
	}
	result.ArchivePath = archivePath
	result.State = StateArchived
	logger.Info("file lifecycle complete",
		logging.String(logging.FieldKey, result.FinalKey),
		logging.String("archive_path", archivePath),
		logging.String(logging.FieldState, string(result.State)),
	)
	p.record(ctx, logger, result, digest)
	return nil
}

func (p *Processor) reject(logger *slog.Logger, msg, eventType string, attrs ...logging.Attr) {
	attrs = append(attrs,
		logging.String(logging.FieldImpact, "file is left in place and skipped"),
		logging.String(logging.FieldErrorHint, "inspect the file or its location"),
	)
	logging.WarnWithContext(logger, msg, eventType, attrs...)
}

func (p *Processor) matchesMarker(path string) bool {
	if p.marker == "" {
		return true
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(path), fold.String(p.marker))
}

func (p *Processor) digest(logger *slog.Logger, f *os.File) string {
	if _, ok := p.recorder.(journal.Nop); ok {
		return ""
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		logger.Debug("digest skipped", logging.Error(err))
		return ""
	}
	sum, _, err := fileutil.Digest(f)
	if err != nil {
		logger.Debug("digest skipped", logging.Error(err))
		return ""
	}
	return sum
}

func (p *Processor) record(ctx context.Context, logger *slog.Logger, result *Result, digest string) {
	entry := journal.Entry{
		SourcePath:     result.Path,
		DestinationKey: result.DestinationKey,
		FinalKey:       result.FinalKey,
		ArchivePath:    result.ArchivePath,
		SizeBytes:      result.SizeBytes,
		Digest:         digest,
		Collisions:     result.Collisions,
	}
	switch result.State {
	case StateArchived:
		entry.Status = journal.StatusArchived
	case StateArchiveFailed:
		entry.Status = journal.StatusArchiveFailed
	case StateUploadFailed:
		entry.Status = journal.StatusUploadFailed
	default:
		return
	}
	if result.Err != nil {
		entry.ErrorMessage = result.Err.Error()
	}
	if err := p.recorder.Record(ctx, entry); err != nil {
		logging.WarnWithContext(logger, "journal write failed", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "outcome is missing from the local journal"),
			logging.String(logging.FieldErrorHint, "check the state directory"),
		)
	}
}

// isUnder reports whether path lies strictly inside root.
func isUnder(path, root string) bool {
	if root == "" {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
