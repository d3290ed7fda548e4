// internal/utils/metrics.go
package utils

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector tracks operational counters for the game server:
// sessions created, turns resolved, narrative calls and their latency.
type MetricsCollector struct {
	counters map[string]*Counter
	timings  map[string]*Timing

	mu sync.RWMutex
}

// Counter is a thread-safe monotonically increasing metric.
type Counter struct {
	value int64
}

// Timing tracks count, total and extremes of an operation's duration in
// milliseconds.
type Timing struct {
	count int64
	sum   int64
	min   int64
	max   int64
	mu    sync.Mutex
}

var (
	globalMetrics *MetricsCollector
	metricsOnce   sync.Once
)

// GetMetricsCollector returns the global metrics collector.
func GetMetricsCollector() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetrics = &MetricsCollector{
			counters: make(map[string]*Counter),
			timings:  make(map[string]*Timing),
		}
	})
	return globalMetrics
}

// IncrementCounter bumps a named counter.
func (m *MetricsCollector) IncrementCounter(name string) {
	atomic.AddInt64(&m.counter(name).value, 1)
}

// ObserveDuration records one operation duration under a name.
func (m *MetricsCollector) ObserveDuration(name string, d time.Duration) {
	t := m.timing(name)
	ms := d.Milliseconds()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.count++
	t.sum += ms
	if t.count == 1 || ms < t.min {
		t.min = ms
	}
	if ms > t.max {
		t.max = ms
	}
}

// Snapshot returns a flat serializable view of all metrics.
func (m *MetricsCollector) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]interface{}, len(m.counters)+len(m.timings))
	for name, c := range m.counters {
		out[name] = atomic.LoadInt64(&c.value)
	}
	for name, t := range m.timings {
		t.mu.Lock()
		entry := map[string]int64{
			"count":  t.count,
			"sum_ms": t.sum,
			"min_ms": t.min,
			"max_ms": t.max,
		}
		if t.count > 0 {
			entry["avg_ms"] = t.sum / t.count
		}
		t.mu.Unlock()
		out[name] = entry
	}
	return out
}

func (m *MetricsCollector) counter(name string) *Counter {
	m.mu.RLock()
	c, exists := m.counters[name]
	m.mu.RUnlock()
	if exists {
		return c
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, exists = m.counters[name]; exists {
		return c
	}
	c = &Counter{}
	m.counters[name] = c
	return c
}

func (m *MetricsCollector) timing(name string) *Timing {
	m.mu.RLock()
	t, exists := m.timings[name]
	m.mu.RUnlock()
	if exists {
		return t
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if t, exists = m.timings[name]; exists {
		return t
	}
	t = &Timing{}
	m.timings[name] = t
	return t
}
