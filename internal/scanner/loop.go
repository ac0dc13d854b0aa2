package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"filewatcher/internal/logging"
	"filewatcher/internal/metrics"
	"filewatcher/internal/processor"
)

// FileProcessor handles one discovered file.
type FileProcessor interface {
	Process(ctx context.Context, path string) (processor.Result, error)
}

// TickSummary reports what a single scan pass did.
type TickSummary struct {
	Tick       uint64
	Discovered int
	States     map[processor.State]int
	Errors     []error
	Duration   time.Duration
}

// Loop polls the source tree and feeds files to a processor one at a time.
type Loop struct {
	sourceRoot  string
	archiveRoot string
	interval    time.Duration
	processor   FileProcessor
	metrics     *metrics.Metrics
	logger      *slog.Logger
	tick        uint64
}

// NewLoop builds a scan loop. interval <= 0 falls back to one second.
func NewLoop(sourceRoot, archiveRoot string, interval time.Duration, proc FileProcessor, m *metrics.Metrics, logger *slog.Logger) *Loop {
	if interval <= 0 {
		interval = time.Second
	}
	return &Loop{
		sourceRoot:  sourceRoot,
		archiveRoot: archiveRoot,
		interval:    interval,
		processor:   proc,
		metrics:     m,
		logger:      logging.NewComponentLogger(logger, "scanner"),
	}
}

// Run scans until ctx is cancelled. Failures inside a pass are logged and
// never stop the loop. Cancellation is a clean shutdown and returns nil.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("scan loop started",
		logging.String("source_dir", l.sourceRoot),
		logging.String("archive_dir", l.archiveRoot),
		logging.Duration("poll_interval", l.interval),
	)
	for {
		if ctx.Err() != nil {
			break
		}
		summary := l.Tick(ctx)
		for _, err := range summary.Errors {
			logging.ErrorWithContext(logging.WithContext(logging.WithTick(ctx, summary.Tick), l.logger),
				"scan pass error", "scan_error",
				logging.String(logging.FieldErrorHint, "the file will be retried on the next pass"),
				logging.Error(err),
			)
		}

		select {
		case <-ctx.Done():
		case <-time.After(l.interval):
		}
	}
	l.logger.Info("scan loop stopped")
	return nil
}

// Tick runs one discovery pass and processes every candidate in order.
func (l *Loop) Tick(ctx context.Context) (summary TickSummary) {
	l.tick++
	summary = TickSummary{Tick: l.tick, States: make(map[processor.State]int)}
	ctx = logging.WithTick(ctx, l.tick)
	logger := logging.WithContext(ctx, l.logger)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			summary.Errors = append(summary.Errors, fmt.Errorf("scan pass panicked: %v\n%s", r, debug.Stack()))
		}
		summary.Duration = time.Since(start)
		l.metrics.ObserveTick(summary.Duration)
		l.logSummary(logger, summary)
	}()

	paths, err := Discover(l.sourceRoot, l.archiveRoot)
	if err != nil {
		summary.Errors = append(summary.Errors, err)
	}
	summary.Discovered = len(paths)

	for _, path := range paths {
		if ctx.Err() != nil {
			return summary
		}
		result, procErr := l.processFile(ctx, path)
		summary.States[result.State]++
		if procErr != nil {
			summary.Errors = append(summary.Errors, procErr)
		}
	}
	return summary
}

func (l *Loop) processFile(ctx context.Context, path string) (result processor.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = processor.Result{Path: path, State: processor.StateError}
			err = fmt.Errorf("processing %s panicked: %v", path, r)
		}
	}()
	return l.processor.Process(ctx, path)
}

func (l *Loop) logSummary(logger *slog.Logger, summary TickSummary) {
	if summary.Discovered == 0 && len(summary.Errors) == 0 {
		logger.Debug("scan pass complete", logging.Duration("duration", summary.Duration))
		return
	}
	attrs := []logging.Attr{
		logging.Int("discovered", summary.Discovered),
		logging.Int("errors", len(summary.Errors)),
		logging.Duration("duration", summary.Duration),
	}
	for state, count := range summary.States {
		attrs = append(attrs, logging.Int(string(state), count))
	}
	logger.Info("scan pass complete", logging.Args(attrs...)...)
}
