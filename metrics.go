package bitq

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordBuild is called after each corpus build.
	// count is the number of vectors quantized, err is nil if successful.
	RecordBuild(count int, duration time.Duration, err error)

	// RecordSearch is called after each search operation.
	// k is the number of neighbors requested.
	RecordSearch(k int, duration time.Duration, err error)

	// RecordBatchFallback is called whenever batch scoring recovered
	// through the single-pair path.
	RecordBatchFallback()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordBatchFallback()                   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount       atomic.Int64
	BuildErrors      atomic.Int64
	BuildTotalNanos  atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
	BatchFallbacks   atomic.Int64
}

func (m *BasicMetricsCollector) RecordBuild(count int, duration time.Duration, err error) {
	m.BuildCount.Add(1)
	m.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.BuildErrors.Add(1)
	}
}

func (m *BasicMetricsCollector) RecordSearch(k int, duration time.Duration, err error) {
	m.SearchCount.Add(1)
	m.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.SearchErrors.Add(1)
	}
}

func (m *BasicMetricsCollector) RecordBatchFallback() {
	m.BatchFallbacks.Add(1)
}
