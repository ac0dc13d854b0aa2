package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle outcome recorded for a file.
type Status string

const (
	StatusUploaded      Status = "uploaded"
	StatusArchived      Status = "archived"
	StatusUploadFailed  Status = "upload_failed"
	StatusArchiveFailed Status = "archive_failed"
)

// ParseStatus validates a user-supplied status name.
func ParseStatus(value string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(value))); s {
	case StatusUploaded, StatusArchived, StatusUploadFailed, StatusArchiveFailed:
		return s, nil
	default:
		return "", fmt.Errorf("unknown journal status %q", value)
	}
}

// Entry is one recorded upload attempt.
type Entry struct {
	ID             int64
	SourcePath     string
	DestinationKey string
	FinalKey       string
	ArchivePath    string
	SizeBytes      int64
	Digest         string
	Status         Status
	Collisions     int
	ErrorMessage   string
	RecordedAt     time.Time
}

// Filter narrows List results. A zero Limit returns every match.
type Filter struct {
	Statuses []Status
	Limit    int
}

// Totals aggregates the journal by status.
type Totals struct {
	Entries       int
	UploadedBytes int64
	ByStatus      map[Status]int
}

const entryColumns = `id, source_path, destination_key, final_key, archive_path,
    size_bytes, digest, status, collisions, error_message, recorded_at`

// Record appends an entry. A zero RecordedAt is stamped with the current time.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.Status == "" {
		return errors.New("journal entry status is required")
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal_entries (
            source_path, destination_key, final_key, archive_path, size_bytes,
            digest, status, collisions, error_message, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SourcePath,
		entry.DestinationKey,
		nullableString(entry.FinalKey),
		nullableString(entry.ArchivePath),
		entry.SizeBytes,
		nullableString(entry.Digest),
		string(entry.Status),
		entry.Collisions,
		nullableString(entry.ErrorMessage),
		entry.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries`
	args := make([]any, 0, len(filter.Statuses)+1)
	if len(filter.Statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(filter.Statuses)) + `)`
		for _, status := range filter.Statuses {
			args = append(args, string(status))
		}
	}
	query += ` ORDER BY id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return entries, nil
}

// Summary counts entries per status and sums bytes that reached the store.
func (s *Store) Summary(ctx context.Context) (Totals, error) {
	totals := Totals{ByStatus: make(map[Status]int)}
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(1), COALESCE(SUM(size_bytes), 0) FROM journal_entries GROUP BY status`)
	if err != nil {
		return totals, fmt.Errorf("summarize journal: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
			bytes  int64
		)
		if err := rows.Scan(&status, &count, &bytes); err != nil {
			return totals, fmt.Errorf("scan journal summary: %w", err)
		}
		totals.ByStatus[Status(status)] = count
		totals.Entries += count
		if Status(status) != StatusUploadFailed {
			totals.UploadedBytes += bytes
		}
	}
	if err := rows.Err(); err != nil {
		return totals, fmt.Errorf("iterate journal summary: %w", err)
	}
	return totals, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		entry                                 Entry
		finalKey, archivePath, digest, errMsg sql.NullString
		status, recordedAt                    string
	)
	if err := row.Scan(
		&entry.ID,
		&entry.SourcePath,
		&entry.DestinationKey,
		&finalKey,
		&archivePath,
		&entry.SizeBytes,
		&digest,
		&status,
		&entry.Collisions,
		&errMsg,
		&recordedAt,
	); err != nil {
		return Entry{}, fmt.Errorf("scan journal entry: %w", err)
	}
	entry.FinalKey = finalKey.String
	entry.ArchivePath = archivePath.String
	entry.Digest = digest.String
	entry.ErrorMessage = errMsg.String
	entry.Status = Status(status)
	if ts, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
		entry.RecordedAt = ts
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}
