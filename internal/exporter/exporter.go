// Package exporter publishes monitor activity as Prometheus metrics.
package exporter

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rileyhilliard/vu1/internal/dial"
	"github.com/rileyhilliard/vu1/internal/logger"
)

const namespace = "vu1"

// Exporter implements monitor.Recorder and counts transport retries.
// Metrics live in their own registry so several exporters can coexist in
// tests.
type Exporter struct {
	registry *prometheus.Registry

	ticks        prometheus.Counter
	pushes       *prometheus.CounterVec
	values       *prometheus.GaugeVec
	sampleErrors *prometheus.CounterVec
	retries      prometheus.Counter
}

// New creates an exporter with all metrics registered.
func New() *Exporter {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Exporter{
		registry: reg,
		ticks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "ticks_total",
			Help:      "Monitor ticks started",
		}),
		pushes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dial",
			Name:      "pushes_total",
			Help:      "Dial value pushes by dial and result (ok, error)",
		}, []string{"dial", "result"}),
		values: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dial",
			Name:      "value",
			Help:      "Last value successfully pushed to each dial (0-100)",
		}, []string{"dial"}),
		sampleErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "sample_errors_total",
			Help:      "Metric sampling failures by dial",
		}, []string{"dial"}),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "retries_total",
			Help:      "Requests retried after a timeout",
		}),
	}
}

// ObserveTick implements monitor.Recorder.
func (e *Exporter) ObserveTick() {
	e.ticks.Inc()
}

// ObservePush implements monitor.Recorder.
func (e *Exporter) ObservePush(role dial.Role, value int, err error) {
	if err != nil {
		e.pushes.WithLabelValues(role.String(), "error").Inc()
		return
	}
	e.pushes.WithLabelValues(role.String(), "ok").Inc()
	e.values.WithLabelValues(role.String()).Set(float64(value))
}

// ObserveSampleError implements monitor.Recorder.
func (e *Exporter) ObserveSampleError(role dial.Role) {
	e.sampleErrors.WithLabelValues(role.String()).Inc()
}

// OnRetry matches transport.Policy.OnRetry.
func (e *Exporter) OnRetry(attempt int, err error) {
	e.retries.Inc()
}

// Handler serves the exporter's metrics in the Prometheus text format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Serve listens on addr and serves /metrics until ctx is cancelled.
func (e *Exporter) Serve(ctx context.Context, addr string, log logger.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return e.serve(ctx, ln, log)
}

func (e *Exporter) serve(ctx context.Context, ln net.Listener, log logger.Logger) error {
	if log == nil {
		log = logger.Noop()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving metrics on http://%s/metrics", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
