// Package metrics provides Prometheus metrics for transfer jobs and sessions.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the registered collectors. A nil *Collector is valid and
// records nothing.
type Collector struct {
	JobsTotal     *prometheus.CounterVec
	BytesTotal    *prometheus.CounterVec
	JobDuration   *prometheus.HistogramVec
	ConnectsTotal *prometheus.CounterVec
}

// NewCollector registers the collectors on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		JobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sxtx_jobs_total",
				Help: "Total transfer jobs by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		BytesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sxtx_bytes_total",
				Help: "Total bytes moved over the file-transfer channel",
			},
			[]string{"direction"},
		),
		JobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sxtx_job_duration_seconds",
				Help:    "Transfer job duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 4, 8),
			},
			[]string{"kind"},
		),
		ConnectsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sxtx_connects_total",
				Help: "Total connection attempts by result",
			},
			[]string{"result"},
		),
	}
}

// RecordJob records a finished job.
func (c *Collector) RecordJob(kind, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.JobsTotal.WithLabelValues(kind, outcome).Inc()
	c.JobDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// AddBytes adds n transferred bytes in direction ("upload" or "download").
func (c *Collector) AddBytes(direction string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.BytesTotal.WithLabelValues(direction).Add(float64(n))
}

// RecordConnect records a connection attempt.
func (c *Collector) RecordConnect(err error) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	c.ConnectsTotal.WithLabelValues(result).Inc()
}

// Serve exposes gatherer on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
