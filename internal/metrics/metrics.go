package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"filewatcher/internal/logging"
)

// Namespace prefixes every exported metric.
const Namespace = "filewatcher"

// Metrics tracks file lifecycle counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Files         *prometheus.CounterVec
	Collisions    prometheus.Counter
	UploadedBytes prometheus.Counter
	Ticks         prometheus.Counter
	TickDuration  prometheus.Histogram

	registry *prometheus.Registry
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		Files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "files_total",
			Help:      "Files that reached a terminal lifecycle state, by state.",
		}, []string{"state"}),
		Collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "collisions_total",
			Help:      "Destination keys that were already taken.",
		}),
		UploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes written to the object store.",
		}),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "scan",
			Name:      "ticks_total",
			Help:      "Completed scan passes.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "scan",
			Name:      "tick_duration_seconds",
			Help:      "Wall time of a scan pass.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.Collectors()...)
	return m
}

// Collectors returns all metrics as collectors for registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}
	return []prometheus.Collector{
		m.Files,
		m.Collisions,
		m.UploadedBytes,
		m.Ticks,
		m.TickDuration,
	}
}

// ObserveFile counts a file that finished in state.
func (m *Metrics) ObserveFile(state string) {
	if m == nil {
		return
	}
	m.Files.WithLabelValues(state).Inc()
}

// ObserveUpload records a successful upload.
func (m *Metrics) ObserveUpload(bytes int64, collisions int) {
	if m == nil {
		return
	}
	if bytes > 0 {
		m.UploadedBytes.Add(float64(bytes))
	}
	if collisions > 0 {
		m.Collisions.Add(float64(collisions))
	}
}

// ObserveTick records a completed scan pass.
func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	m.Ticks.Inc()
	m.TickDuration.Observe(d.Seconds())
}

// Handler serves the private registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, m *Metrics, logger *slog.Logger) error {
	logger = logging.NewComponentLogger(logger, "metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics endpoint listening", logging.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics shutdown failed", logging.Error(err))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
