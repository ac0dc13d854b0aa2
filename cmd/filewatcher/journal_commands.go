package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"filewatcher/internal/journal"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect recorded uploads",
	}
	journalCmd.AddCommand(newJournalListCommand(ctx))
	journalCmd.AddCommand(newJournalSummaryCommand(ctx))
	return journalCmd
}

func newJournalListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := journal.Filter{Limit: limit}
			for _, value := range statuses {
				status, err := journal.ParseStatus(value)
				if err != nil {
					return err
				}
				filter.Statuses = append(filter.Statuses, status)
			}

			return withJournal(ctx, func(store *journal.Store) error {
				entries, err := store.List(cmd.Context(), filter)
				if err != nil {
					return fmt.Errorf("list journal: %w", err)
				}
				if asJSON {
					return writeJSON(cmd, entriesJSON(entries))
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No journal entries")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					key := e.FinalKey
					if key == "" {
						key = e.DestinationKey
					}
					rows = append(rows, []string{
						strconv.FormatInt(e.ID, 10),
						e.RecordedAt.Local().Format(time.DateTime),
						string(e.Status),
						e.SourcePath,
						key,
						humanize.IBytes(uint64(e.SizeBytes)),
						strconv.Itoa(e.Collisions),
					})
				}
				columns := []column{
					{title: "ID", right: true},
					{title: "Recorded"},
					{title: "Status"},
					{title: "Source", maxWidth: 60},
					{title: "Key", maxWidth: 60},
					{title: "Size", right: true},
					{title: "Collisions", right: true},
				}
				fmt.Fprintln(out, renderTable(columns, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (uploaded, archived, upload_failed, archive_failed)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newJournalSummaryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show totals per status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(ctx, func(store *journal.Store) error {
				totals, err := store.Summary(cmd.Context())
				if err != nil {
					return fmt.Errorf("summarize journal: %w", err)
				}
				out := cmd.OutOrStdout()
				statuses := make([]string, 0, len(totals.ByStatus))
				for status := range totals.ByStatus {
					statuses = append(statuses, string(status))
				}
				sort.Strings(statuses)
				rows := make([][]string, 0, len(statuses))
				for _, status := range statuses {
					rows = append(rows, []string{status, strconv.Itoa(totals.ByStatus[journal.Status(status)])})
				}
				fmt.Fprintf(out, "Entries: %d\n", totals.Entries)
				fmt.Fprintf(out, "Uploaded: %s\n", humanize.IBytes(uint64(totals.UploadedBytes)))
				if len(rows) > 0 {
					columns := []column{{title: "Status"}, {title: "Count", right: true}}
					fmt.Fprintln(out, renderTable(columns, rows, []string{"total", strconv.Itoa(totals.Entries)}))
				}
				return nil
			})
		},
	}
}

func withJournal(ctx *commandContext, fn func(*journal.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Journal.Enabled {
		return fmt.Errorf("journal is disabled in %s", ctx.configPath)
	}
	store, err := journal.Open(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()
	return fn(store)
}
