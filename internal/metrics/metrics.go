// Package metrics exposes the Prometheus counters and gauges this
// codebase's components report against, following the same
// registry-per-collector shape as
// _examples/orbas1-Synnergy/synnergy-network/core/system_health_logging.go's
// HealthLogger: a Collector owns its own *prometheus.Registry rather than
// registering into the global default, so a process embedding this module
// can run more than one Collector (e.g. one per space) without metric-name
// collisions.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Collector aggregates the metrics branch, blockstore and remote report
// against: commit throughput, CAS contention, cache effectiveness and
// remote request latency, per SPEC_FULL.md §11's metrics wiring note.
// A nil *Collector is valid everywhere it is accepted as a collaborator:
// every Record method is a no-op on a nil receiver, so callers that were
// not configured with metrics (most tests) pay nothing for it.
type Collector struct {
	registry *prometheus.Registry

	commitsTotal      prometheus.Counter
	casConflictsTotal prometheus.Counter
	cacheHitsTotal    prometheus.Counter
	cacheMissesTotal  prometheus.Counter

	remoteRequestsTotal   *prometheus.CounterVec
	remoteRequestDuration *prometheus.HistogramVec
}

// New constructs a Collector with a private registry.
func New() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		commitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dialogdb_commits_total",
			Help: "Total number of branch revisions committed",
		}),
		casConflictsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dialogdb_cas_conflicts_total",
			Help: "Total number of compare-and-swap conflicts on cell writes",
		}),
		cacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dialogdb_block_cache_hits_total",
			Help: "Total number of block store reads satisfied by the node cache",
		}),
		cacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dialogdb_block_cache_misses_total",
			Help: "Total number of block store reads that fell through to the backend",
		}),
		remoteRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dialogdb_remote_requests_total",
			Help: "Total number of remote object store requests by method and outcome",
		}, []string{"method", "outcome"}),
		remoteRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dialogdb_remote_request_duration_seconds",
			Help:    "Remote object store request duration in seconds by method",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(
		c.commitsTotal,
		c.casConflictsTotal,
		c.cacheHitsTotal,
		c.cacheMissesTotal,
		c.remoteRequestsTotal,
		c.remoteRequestDuration,
	)
	return c
}

// RecordCommit increments the commit counter.
func (c *Collector) RecordCommit() {
	if c == nil {
		return
	}
	c.commitsTotal.Inc()
}

// RecordCasConflict increments the CAS conflict counter.
func (c *Collector) RecordCasConflict() {
	if c == nil {
		return
	}
	c.casConflictsTotal.Inc()
}

// RecordCacheHit increments the block cache hit counter.
func (c *Collector) RecordCacheHit() {
	if c == nil {
		return
	}
	c.cacheHitsTotal.Inc()
}

// RecordCacheMiss increments the block cache miss counter.
func (c *Collector) RecordCacheMiss() {
	if c == nil {
		return
	}
	c.cacheMissesTotal.Inc()
}

// RecordRemoteRequest records a completed remote request's method, outcome
// ("ok" or a dialogerr.Kind string) and duration.
func (c *Collector) RecordRemoteRequest(method, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.remoteRequestsTotal.WithLabelValues(method, outcome).Inc()
	c.remoteRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// Timer is a small stopwatch helper, mirroring
// _examples/cuemby-warren/pkg/metrics.Timer, for timing a remote
// round-trip without threading a time.Time through call sites by hand.
type Timer struct {
	start time.Time
}

// NewTimer starts a Timer.
func NewTimer() Timer {
	return Timer{start: time.Now()}
}

// Elapsed returns the time since the Timer was started.
func (t Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Registry returns the Collector's private registry, for callers that want
// to gather it directly (tests) or fold it into a larger registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the Collector's Prometheus scrape handler.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing the Collector's /metrics endpoint
// on addr, logging failures other than a graceful Shutdown through log.
func (c *Collector) Serve(addr string, log *logrus.Logger) *http.Server {
	if log == nil {
		log = logrus.New()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics: server stopped")
		}
	}()
	return srv
}

// Shutdown gracefully stops a server returned by Serve.
func (c *Collector) Shutdown(ctx context.Context, srv *http.Server) error {
	return srv.Shutdown(ctx)
}
