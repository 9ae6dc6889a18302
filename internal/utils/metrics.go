// internal/utils/metrics.go
package utils

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector counts parser and reducer activity for the stats
// endpoint.
type MetricsCollector struct {
	counters map[string]*counter
	mu       sync.RWMutex

	startedAt time.Time
}

type counter struct {
	value int64
}

// Well-known counter names.
const (
	MetricPromptsParsed  = "prompts_parsed"
	MetricPromptsFailed  = "prompts_failed"
	MetricActionsApplied = "actions_applied"
	MetricActionsSkipped = "actions_skipped"
	MetricScenesSaved    = "scenes_saved"
	MetricScenesLoaded   = "scenes_loaded"
	MetricBroadcastsSent = "broadcasts_sent"
)

var (
	globalMetrics *MetricsCollector
	metricsOnce   sync.Once
)

// GetMetricsCollector returns the global metrics collector.
func GetMetricsCollector() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetrics = &MetricsCollector{
			counters:  make(map[string]*counter),
			startedAt: time.Now(),
		}
	})
	return globalMetrics
}

// IncrementCounter adds one to the named counter.
func (m *MetricsCollector) IncrementCounter(name string) {
	m.AddCounter(name, 1)
}

// AddCounter adds a value to the named counter. The fast path only takes
// the read lock.
func (m *MetricsCollector) AddCounter(name string, value int64) {
	m.mu.RLock()
	c, exists := m.counters[name]
	m.mu.RUnlock()

	if !exists {
		m.mu.Lock()
		c, exists = m.counters[name]
		if !exists {
			c = &counter{}
			m.counters[name] = c
		}
		m.mu.Unlock()
	}

	atomic.AddInt64(&c.value, value)
}

// CounterValue returns the current value of the named counter.
func (m *MetricsCollector) CounterValue(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if c, exists := m.counters[name]; exists {
		return atomic.LoadInt64(&c.value)
	}
	return 0
}

// Snapshot returns all counters plus the collector uptime in seconds.
func (m *MetricsCollector) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counters := make(map[string]int64, len(m.counters))
	for name, c := range m.counters {
		counters[name] = atomic.LoadInt64(&c.value)
	}

	return map[string]interface{}{
		"counters":       counters,
		"uptime_seconds": int64(time.Since(m.startedAt).Seconds()),
	}
}

// Reset zeroes all counters. Used by tests.
func (m *MetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = make(map[string]*counter)
	m.startedAt = time.Now()
}
