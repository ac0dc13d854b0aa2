package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"filewatcher/internal/archive"
	"filewatcher/internal/config"
	"filewatcher/internal/filelock"
	"filewatcher/internal/journal"
	"filewatcher/internal/logging"
	"filewatcher/internal/metrics"
	"filewatcher/internal/objectstore"
	"filewatcher/internal/pathderive"
	"filewatcher/internal/processor"
	"filewatcher/internal/scanner"
	"filewatcher/internal/upload"
)

// Daemon owns the scan loop and the resources it depends on.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    objectstore.Store
	recorder journal.Recorder
	metrics  *metrics.Metrics
	loop     *scanner.Loop

	running   atomic.Bool
	closeOnce sync.Once
}

// New wires the lifecycle components for cfg. recorder and m may be nil.
func New(cfg *config.Config, logger *slog.Logger, store objectstore.Store, recorder journal.Recorder, m *metrics.Metrics) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and object store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if recorder == nil {
		recorder = journal.Nop{}
	}

	proc := processor.New(processor.Options{
		Deriver:    pathderive.NewDeriver(cfg.Paths.SourceDir, cfg.Watch.FileType),
		Guard:      filelock.NewGuard(logger),
		Planner:    upload.NewPlanner(store, logger, cfg.Watch.MaxCollisionAttempts),
		Mover:      archive.NewMover(cfg.Paths.ArchiveDir, logger),
		Recorder:   recorder,
		Metrics:    m,
		Logger:     logger,
		PathMarker: cfg.Watch.PathMarker,
	})
	loop := scanner.NewLoop(cfg.Paths.SourceDir, cfg.Paths.ArchiveDir, cfg.PollInterval(), proc, m, logger)

	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		recorder: recorder,
		metrics:  m,
		loop:     loop,
	}, nil
}

// Run polls until ctx is cancelled. When metrics.listen_addr is set the
// Prometheus endpoint is served for the same lifetime.
func (d *Daemon) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("daemon already running")
	}
	defer d.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if addr := d.cfg.Metrics.ListenAddr; addr != "" && d.metrics != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metrics.Serve(ctx, addr, d.metrics, d.logger); err != nil {
				logging.WarnWithContext(d.logger, "metrics endpoint stopped", "metrics_failed",
					logging.String("addr", addr),
					logging.Error(err),
					logging.String(logging.FieldImpact, "metrics are unavailable; uploads continue"),
					logging.String(logging.FieldErrorHint, "check that metrics.listen_addr is free"),
				)
			}
		}()
	}

	d.logger.Info("filewatcher started",
		logging.String(logging.FieldContainer, d.store.Container()),
		logging.String("backend", d.cfg.Store.Backend),
	)
	err := d.loop.Run(ctx)
	cancel()
	wg.Wait()
	d.logger.Info("filewatcher stopped")
	return err
}

// Once runs a single scan pass.
func (d *Daemon) Once(ctx context.Context) scanner.TickSummary {
	return d.loop.Tick(ctx)
}

// Running reports whether Run is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Close releases the object store client and the journal.
func (d *Daemon) Close() error {
	var errs []error
	d.closeOnce.Do(func() {
		if d.store != nil {
			errs = append(errs, d.store.Close())
		}
		if closer, ok := d.recorder.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	})
	return errors.Join(errs...)
}
