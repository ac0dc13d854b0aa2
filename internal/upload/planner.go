package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gabriel-vasile/mimetype"

	"filewatcher/internal/lifecycle"
	"filewatcher/internal/logging"
	"filewatcher/internal/objectstore"
	"filewatcher/internal/pathderive"
)

// DefaultMaxCollisions bounds how many alternate keys are tried before giving up.
const DefaultMaxCollisions = 5

// ErrCollisionsExhausted is returned when every generated key was already taken.
var ErrCollisionsExhausted = errors.New("collision attempts exhausted")

// Outcome is the result of an upload with collision handling.
type Outcome struct {
	FinalKey   string
	Err        error
	Collisions int
}

// Uploaded reports a successful upload under finalKey.
func Uploaded(finalKey string) Outcome { return Outcome{FinalKey: finalKey} }

// Failed reports an upload that did not complete.
func Failed(cause error) Outcome { return Outcome{Err: cause} }

// OK reports whether the content is now stored remotely.
func (o Outcome) OK() bool { return o.Err == nil && o.FinalKey != "" }

// Planner uploads local files to a store without overwriting existing objects.
type Planner struct {
	store         objectstore.Store
	logger        *slog.Logger
	maxCollisions int
}

// NewPlanner builds a planner. maxCollisions <= 0 selects DefaultMaxCollisions.
func NewPlanner(store objectstore.Store, logger *slog.Logger, maxCollisions int) *Planner {
	if maxCollisions <= 0 {
		maxCollisions = DefaultMaxCollisions
	}
	return &Planner{
		store:         store,
		logger:        logging.NewComponentLogger(logger, "upload"),
		maxCollisions: maxCollisions,
	}
}

// Exists reports whether key is already present in the store. Store errors
// carry the ErrUpload marker.
func (p *Planner) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := p.store.Exists(ctx, key)
	if err != nil {
		return false, lifecycle.Wrap(lifecycle.ErrUpload, "upload", "exists", key, err)
	}
	return exists, nil
}

// Upload writes the full content of file under key. Failures, including a
// key that is already taken, are logged and reported as false.
func (p *Planner) Upload(ctx context.Context, file *os.File, key string) bool {
	err := p.upload(ctx, file, key)
	if errors.Is(err, objectstore.ErrObjectExists) {
		p.logFailure(file, key, err)
	}
	return err == nil
}

// upload is the single-key write shared by Upload and the collision loop.
// A conditional-write rejection is returned unlogged so the caller can
// treat it as a collision.
func (p *Planner) upload(ctx context.Context, file *os.File, key string) error {
	err := p.put(ctx, file, key)
	switch {
	case err == nil:
		p.logger.Debug("upload complete",
			logging.String(logging.FieldPath, file.Name()),
			logging.String(logging.FieldKey, key),
			logging.String(logging.FieldContainer, p.store.Container()),
		)
	case !errors.Is(err, objectstore.ErrObjectExists):
		p.logFailure(file, key, err)
	}
	return err
}

// UploadWithCollisionHandling uploads file under initialKey, or under a fresh
// suffixed variant of it when the key is taken. A conditional-write rejection
// counts as a collision.
func (p *Planner) UploadWithCollisionHandling(ctx context.Context, file *os.File, initialKey string) Outcome {
	key := initialKey
	collisions := 0
	for {
		exists, err := p.Exists(ctx, key)
		if err != nil {
			p.logFailure(file, key, err)
			return Outcome{Err: err, Collisions: collisions}
		}

		if !exists {
			err = p.upload(ctx, file, key)
			if err == nil {
				return Outcome{FinalKey: key, Collisions: collisions}
			}
			if !errors.Is(err, objectstore.ErrObjectExists) {
				return Outcome{Err: err, Collisions: collisions}
			}
		}

		if collisions >= p.maxCollisions {
			err := lifecycle.Wrap(lifecycle.ErrUpload, "upload", "collision",
				fmt.Sprintf("%s after %d attempts", initialKey, collisions), ErrCollisionsExhausted)
			p.logFailure(file, key, err)
			return Outcome{Err: err, Collisions: collisions}
		}
		collisions++
		next := pathderive.WithCollisionSuffix(initialKey)
		logging.WarnWithContext(p.logger, "destination exists, retrying under a new key", "upload_collision",
			logging.String(logging.FieldKey, key),
			logging.String("new_key", next),
			logging.String(logging.FieldContainer, p.store.Container()),
			logging.Int("attempt", collisions),
			logging.String(logging.FieldImpact, "file is stored under a suffixed name"),
			logging.String(logging.FieldErrorHint, "check for duplicate producers writing the same file name"),
		)
		key = next
	}
}

func (p *Planner) put(ctx context.Context, file *os.File, key string) error {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return lifecycle.Wrap(lifecycle.ErrUpload, "upload", "rewind", file.Name(), err)
	}
	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectReader(file); err == nil && mt != nil {
		contentType = mt.String()
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return lifecycle.Wrap(lifecycle.ErrUpload, "upload", "rewind", file.Name(), err)
	}
	var size int64
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}

	if err := p.store.Put(ctx, key, file, objectstore.PutOptions{ContentType: contentType, Size: size}); err != nil {
		if errors.Is(err, objectstore.ErrObjectExists) {
			return err
		}
		return lifecycle.Wrap(lifecycle.ErrUpload, "upload", "put", key, err)
	}
	return nil
}

func (p *Planner) logFailure(file *os.File, key string, err error) {
	logging.ErrorWithContext(p.logger, "upload failed", "upload_failed",
		logging.String(logging.FieldPath, file.Name()),
		logging.String(logging.FieldKey, key),
		logging.String(logging.FieldContainer, p.store.Container()),
		logging.String(logging.FieldErrorHint, lifecycle.Hint(err)),
		logging.Error(err),
	)
}
