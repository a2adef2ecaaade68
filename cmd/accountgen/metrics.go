// metrics.go - Metrics collection for account generation
package main

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// MetricsCollector keeps counters and histograms for one run of the tool.
type MetricsCollector struct {
	mu         sync.Mutex
	counters   map[string]uint64
	histograms map[string][]float64
}

// HistogramSummary aggregates the recorded values of one histogram.
type HistogramSummary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
	Avg   float64 `json:"avg"`
}

// MetricsSummary is a point-in-time snapshot of all metrics.
type MetricsSummary struct {
	Counters   map[string]uint64           `json:"counters"`
	Histograms map[string]HistogramSummary `json:"histograms"`
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:   make(map[string]uint64),
		histograms: make(map[string][]float64),
	}
}

// AddCounter adds delta to a counter metric
func (mc *MetricsCollector) AddCounter(name string, delta uint64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.counters[makeKey(name, labels)] += delta
}

// RecordHistogram records a value in a histogram
func (mc *MetricsCollector) RecordHistogram(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := makeKey(name, labels)
	mc.histograms[key] = append(mc.histograms[key], value)

	// Keep only last 1000 values for memory efficiency
	if n := len(mc.histograms[key]); n > 1000 {
		mc.histograms[key] = mc.histograms[key][n-1000:]
	}
}

// Summary returns a summary of all metrics
func (mc *MetricsCollector) Summary() MetricsSummary {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	summary := MetricsSummary{
		Counters:   maps.Clone(mc.counters),
		Histograms: make(map[string]HistogramSummary, len(mc.histograms)),
	}
	for key, values := range mc.histograms {
		if len(values) == 0 {
			continue
		}
		h := HistogramSummary{Count: len(values), Min: values[0], Max: values[0]}
		for _, v := range values {
			h.Min = min(h.Min, v)
			h.Max = max(h.Max, v)
			h.Sum += v
		}
		h.Avg = h.Sum / float64(h.Count)
		summary.Histograms[key] = h
	}
	return summary
}

// makeKey creates a unique key for a metric name and labels
func makeKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	var b strings.Builder
	b.WriteString(name)
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		b.WriteString("_" + k + "_" + labels[k])
	}
	return b.String()
}

// Predefined metric names
const (
	MetricAccountsCreated = "accounts_created"
	MetricSeedAttempts    = "seed_attempts"
	MetricSeedGrindTime   = "seed_grind_time"
	MetricProofTime       = "id_proof_time"
	MetricErrorCount      = "error_count"
)

// RecordAccount records a successfully ground account.
func (mc *MetricsCollector) RecordAccount(accountType string, attempts uint64, duration time.Duration) {
	labels := map[string]string{"type": accountType}
	mc.AddCounter(MetricAccountsCreated, 1, labels)
	mc.AddCounter(MetricSeedAttempts, attempts, labels)
	mc.RecordHistogram(MetricSeedGrindTime, duration.Seconds(), labels)
}

func (mc *MetricsCollector) RecordProof(duration time.Duration) {
	mc.RecordHistogram(MetricProofTime, duration.Seconds(), nil)
}

func (mc *MetricsCollector) RecordError(errorType string) {
	mc.AddCounter(MetricErrorCount, 1, map[string]string{"type": errorType})
}
