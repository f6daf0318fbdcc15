package metrics

import "sync/atomic"

// RunMetrics accumulates per-run counters for the end-of-run summary line.
type RunMetrics struct {
	DiscoveredCount atomic.Int32
	EnrichedCount   atomic.Int32
	SkippedCount    atomic.Int32
	ErroredCount    atomic.Int32
}
