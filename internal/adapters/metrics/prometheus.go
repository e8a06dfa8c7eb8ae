// Package metrics exports service metrics in Prometheus format. A Registry
// implements the observer interfaces of the services, the streak worker and
// the habit cache, so those packages never import Prometheus themselves.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kanso"

type Config struct {
	// Registry to use; a fresh one when nil.
	Registry *prometheus.Registry

	// Buckets for latency histograms, in seconds.
	LatencyBuckets []float64

	// RuntimeCollectors adds the Go and process collectors.
	RuntimeCollectors bool
}

func DefaultConfig() Config {
	return Config{
		LatencyBuckets:    []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		RuntimeCollectors: true,
	}
}

type Registry struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	analyticsLatency *prometheus.HistogramVec

	streakJobs *prometheus.CounterVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
}

func New(cfg Config) *Registry {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	r := &Registry{registry: registry}

	r.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	r.httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"method", "route"},
	)

	r.analyticsLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "computation_duration_seconds",
			Help:      "Time spent loading and computing analytics",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"operation"},
	)

	r.streakJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "streak_jobs_total",
			Help:      "Streak recomputation jobs by outcome",
		},
		[]string{"status"},
	)

	r.cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache hits",
		},
		[]string{"cache"},
	)

	r.cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache misses",
		},
		[]string{"cache"},
	)

	registry.MustRegister(
		r.httpRequests,
		r.httpLatency,
		r.analyticsLatency,
		r.streakJobs,
		r.cacheHits,
		r.cacheMisses,
	)

	if cfg.RuntimeCollectors {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return r
}

func (r *Registry) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (r *Registry) ObserveAnalytics(operation string, elapsed time.Duration) {
	r.analyticsLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (r *Registry) ObserveStreakJob(status string) {
	r.streakJobs.WithLabelValues(status).Inc()
}

func (r *Registry) ObserveCache(name string, hit bool) {
	if hit {
		r.cacheHits.WithLabelValues(name).Inc()
		return
	}
	r.cacheMisses.WithLabelValues(name).Inc()
}

// Middleware records every request under its route template, so /habits/:id
// is one series however many habits exist. Unmatched routes share "unmatched".
func (r *Registry) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
