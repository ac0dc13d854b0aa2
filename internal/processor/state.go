package processor

// State is where a file's lifecycle ended for one pass.
type State string

const (
	// StateDeferred means the file was locked by another process and will be
	// retried on the next pass.
	StateDeferred         State = "deferred"
	StateRejectedEmpty    State = "rejected_empty"
	StateRejectedArchived State = "rejected_archived"
	StateRejectedInvalid  State = "rejected_invalid"
	StateUploadFailed     State = "upload_failed"
	StateArchived         State = "archived"
	// StateArchiveFailed means the content is stored remotely but the source
	// file is still in the watched tree.
	StateArchiveFailed State = "archive_failed"
	// StateError marks an unexpected failure such as a recovered panic.
	StateError State = "error"
)

// Rejected reports whether the file was skipped by validation.
func (s State) Rejected() bool {
	switch s {
	case StateRejectedEmpty, StateRejectedArchived, StateRejectedInvalid:
		return true
	default:
		return false
	}
}

// Uploaded reports whether the file content reached the object store.
func (s State) Uploaded() bool {
	return s == StateArchived || s == StateArchiveFailed
}

// Result describes the outcome of processing one file.
type Result struct {
	Path           string
	State          State
	DestinationKey string
	FinalKey       string
	ArchivePath    string
	SizeBytes      int64
	Collisions     int
	Err            error
}
