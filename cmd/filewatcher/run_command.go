package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"filewatcher/internal/config"
	"filewatcher/internal/daemon"
	"filewatcher/internal/journal"
	"filewatcher/internal/lifecycle"
	"filewatcher/internal/logging"
	"filewatcher/internal/metrics"
	"filewatcher/internal/objectstore"
	"filewatcher/internal/preflight"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch the source directory and upload completed files",
		Long: `Poll the source directory, upload each completed file to the configured
bucket, and move it into the archive directory once the upload succeeds.

Files held under an exclusive lock by another process are skipped until the
lock is released.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatcher(cmd, ctx, once)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&ctx.overrides.SourceDir, "source", "s", "", "Directory tree to watch")
	flags.StringVarP(&ctx.overrides.Container, "target", "t", "", "Destination bucket")
	flags.StringVarP(&ctx.overrides.ArchiveDir, "archive", "a", "", "Directory that receives uploaded files")
	flags.StringVarP(&ctx.overrides.LoggingProject, "logging-project", "l", "", "Project identifier attached to every log record")
	flags.StringVarP(&ctx.overrides.FileType, "file-type", "f", "", "Fixed category used as the first key segment")
	flags.StringVar(&ctx.overrides.Backend, "backend", "", "Object store backend (gcs, s3, minio, memory)")
	flags.Float64Var(&ctx.overrides.PollIntervalSeconds, "poll-interval", 0, "Seconds between scans")
	flags.BoolVar(&once, "once", false, "Run a single scan and exit")

	return cmd
}

func runWatcher(cmd *cobra.Command, ctx *commandContext, once bool) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	results := preflight.RunAll(signalCtx, cfg)
	if err := preflight.Err(results); err != nil {
		logStartupFailure(logger, "preflight checks failed", err)
		return err
	}

	store, err := objectstore.Open(signalCtx, objectstore.OptionsFromConfig(cfg))
	if err != nil {
		err = lifecycle.Wrap(lifecycle.ErrConfiguration, "objectstore", "open", "", err)
		logStartupFailure(logger, "object store unavailable", err)
		return err
	}
	if err := preflight.Err([]preflight.Result{preflight.CheckStore(signalCtx, store)}); err != nil {
		_ = store.Close()
		logStartupFailure(logger, "object store unreachable", err)
		return err
	}

	recorder, err := openRecorder(cfg)
	if err != nil {
		_ = store.Close()
		logStartupFailure(logger, "journal unavailable", err)
		return err
	}

	d, err := daemon.New(cfg, logger, store, recorder, metrics.New())
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if once {
		summary := d.Once(signalCtx)
		if len(summary.Errors) > 0 {
			return fmt.Errorf("scan finished with %d error(s): %w", len(summary.Errors), errors.Join(summary.Errors...))
		}
		return nil
	}

	if err := d.Run(signalCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openRecorder(cfg *config.Config) (journal.Recorder, error) {
	if !cfg.Journal.Enabled {
		return journal.Nop{}, nil
	}
	store, err := journal.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return store, nil
}

func logStartupFailure(logger *slog.Logger, msg string, err error) {
	logging.ErrorWithContext(logger, msg, "startup_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, lifecycle.Hint(err)),
	)
}
