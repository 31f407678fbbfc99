// Package metrics records backend client metrics and exports them as a
// Prometheus textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder owns a registry so that every CLI invocation starts from zero
type Recorder struct {
	registry *prometheus.Registry

	// Backend request latency (seconds)
	RequestDuration *prometheus.HistogramVec
	// Backend requests by operation and status code
	RequestCount *prometheus.CounterVec
	// Cache lookups by result: hit, miss, error
	CacheLookups *prometheus.CounterVec
	// Habit check-ins by result: committed, rolled_back
	CheckinCount *prometheus.CounterVec
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "kairos",
				Name:      "api_request_duration_seconds",
				Help:      "Backend API request duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"operation", "status"},
		),
		RequestCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kairos",
				Name:      "api_requests_total",
				Help:      "Total number of backend API requests",
			},
			[]string{"operation", "status"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kairos",
				Name:      "cache_lookups_total",
				Help:      "Response cache lookups",
			},
			[]string{"result"},
		),
		CheckinCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kairos",
				Name:      "habit_checkins_total",
				Help:      "Habit check-ins by outcome",
			},
			[]string{"result"},
		),
	}
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordRequest records one backend call. Status 0 means a transport error.
func (r *Recorder) RecordRequest(operation string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	r.RequestDuration.WithLabelValues(operation, code).Observe(duration.Seconds())
	r.RequestCount.WithLabelValues(operation, code).Inc()
}

// RecordCacheLookup counts a cache hit, miss or error
func (r *Recorder) RecordCacheLookup(result string) {
	if r == nil {
		return
	}
	r.CacheLookups.WithLabelValues(result).Inc()
}

// RecordCheckin counts a committed or rolled back check-in
func (r *Recorder) RecordCheckin(result string) {
	if r == nil {
		return
	}
	r.CheckinCount.WithLabelValues(result).Inc()
}

// WriteTextfile writes the current metrics in the node_exporter textfile
// format. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
