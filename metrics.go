package graphbuild

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stage names reported to loggers and metrics collectors.
const (
	StagePartition  = "partition"
	StageDictionary = "dictionary"
	StageResolve    = "resolve"
	StageSplit      = "split"
	StageMerge      = "merge"
	StageLabels     = "labels"
)

// MetricsCollector defines an interface for collecting pipeline metrics.
// Implement this interface to integrate with monitoring systems, or use
// PrometheusCollector.
//
// RecordBucket may be called concurrently when more than one worker is
// configured.
type MetricsCollector interface {
	// RecordStage is called after each pipeline stage.
	// duration is the total time taken, err is nil if successful.
	RecordStage(stage string, duration time.Duration, err error)

	// RecordPass is called after each resolution pass with the number of
	// tokens it resolved.
	RecordPass(pass int, resolved int64, duration time.Duration)

	// RecordBucket is called after each bucket merge.
	RecordBucket(bucket int, vertices, degreeSum int64, duration time.Duration)

	// RecordResult is called once after a successful build.
	RecordResult(n uint64, m int64)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStage(string, time.Duration, error)      {}
func (NoopMetricsCollector) RecordPass(int, int64, time.Duration)          {}
func (NoopMetricsCollector) RecordBucket(int, int64, int64, time.Duration) {}
func (NoopMetricsCollector) RecordResult(uint64, int64)                    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	StageCount    atomic.Int64
	StageErrors   atomic.Int64
	PassCount     atomic.Int64
	ResolvedCount atomic.Int64
	BucketCount   atomic.Int64
	DegreeSum     atomic.Int64
	N             atomic.Uint64
	M             atomic.Int64

	mu        sync.Mutex
	durations map[string]time.Duration
}

// RecordStage implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStage(stage string, duration time.Duration, err error) {
	b.StageCount.Add(1)
	if err != nil {
		b.StageErrors.Add(1)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.durations == nil {
		b.durations = make(map[string]time.Duration)
	}
	b.durations[stage] += duration
}

// RecordPass implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPass(pass int, resolved int64, duration time.Duration) {
	b.PassCount.Add(1)
	b.ResolvedCount.Add(resolved)
}

// RecordBucket implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBucket(bucket int, vertices, degreeSum int64, duration time.Duration) {
	b.BucketCount.Add(1)
	b.DegreeSum.Add(degreeSum)
}

// RecordResult implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResult(n uint64, m int64) {
	b.N.Store(n)
	b.M.Store(m)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	b.mu.Lock()
	durations := make(map[string]time.Duration, len(b.durations))
	for k, v := range b.durations {
		durations[k] = v
	}
	b.mu.Unlock()

	return BasicMetricsStats{
		Stages:         b.StageCount.Load(),
		StageErrors:    b.StageErrors.Load(),
		Passes:         b.PassCount.Load(),
		Resolved:       b.ResolvedCount.Load(),
		Buckets:        b.BucketCount.Load(),
		DegreeSum:      b.DegreeSum.Load(),
		N:              b.N.Load(),
		M:              b.M.Load(),
		StageDurations: durations,
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	Stages         int64
	StageErrors    int64
	Passes         int64
	Resolved       int64
	Buckets        int64
	DegreeSum      int64
	N              uint64
	M              int64
	StageDurations map[string]time.Duration
}
