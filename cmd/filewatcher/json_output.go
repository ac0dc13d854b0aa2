package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"filewatcher/internal/journal"
)

type entryJSON struct {
	ID             int64     `json:"id"`
	RecordedAt     time.Time `json:"recorded_at"`
	Status         string    `json:"status"`
	SourcePath     string    `json:"source_path"`
	DestinationKey string    `json:"destination_key"`
	FinalKey       string    `json:"final_key,omitempty"`
	ArchivePath    string    `json:"archive_path,omitempty"`
	SizeBytes      int64     `json:"size_bytes"`
	Digest         string    `json:"digest,omitempty"`
	Collisions     int       `json:"collisions"`
	Error          string    `json:"error,omitempty"`
}

func entriesJSON(entries []journal.Entry) []entryJSON {
	out := make([]entryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryJSON{
			ID:             e.ID,
			RecordedAt:     e.RecordedAt.UTC(),
			Status:         string(e.Status),
			SourcePath:     e.SourcePath,
			DestinationKey: e.DestinationKey,
			FinalKey:       e.FinalKey,
			ArchivePath:    e.ArchivePath,
			SizeBytes:      e.SizeBytes,
			Digest:         e.Digest,
			Collisions:     e.Collisions,
			Error:          e.ErrorMessage,
		})
	}
	return out
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
