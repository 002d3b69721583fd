package clustgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    runCounter    prometheus.Counter
//	    scanHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordRun(duration time.Duration, err error) {
//	    p.runCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordEncode is called after each record encoding stage.
	// duration is the total time taken, err is nil if successful.
	RecordEncode(duration time.Duration, err error)

	// RecordDistance is called after each dissimilarity matrix stage.
	RecordDistance(duration time.Duration, err error)

	// RecordScan is called after each cluster count scan.
	RecordScan(duration time.Duration, err error)

	// RecordValidate is called after each bootstrap validation stage.
	RecordValidate(duration time.Duration, err error)

	// RecordProfile is called after each cluster profiling stage.
	RecordProfile(duration time.Duration, err error)

	// RecordRun is called after each full pipeline run.
	RecordRun(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordEncode(time.Duration, error)   {}
func (NoopMetricsCollector) RecordDistance(time.Duration, error) {}
func (NoopMetricsCollector) RecordScan(time.Duration, error)     {}
func (NoopMetricsCollector) RecordValidate(time.Duration, error) {}
func (NoopMetricsCollector) RecordProfile(time.Duration, error)  {}
func (NoopMetricsCollector) RecordRun(time.Duration, error)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	EncodeCount        atomic.Int64
	EncodeErrors       atomic.Int64
	DistanceCount      atomic.Int64
	DistanceErrors     atomic.Int64
	DistanceTotalNanos atomic.Int64
	ScanCount          atomic.Int64
	ScanErrors         atomic.Int64
	ScanTotalNanos     atomic.Int64
	ValidateCount      atomic.Int64
	ValidateErrors     atomic.Int64
	ValidateTotalNanos atomic.Int64
	ProfileCount       atomic.Int64
	ProfileErrors      atomic.Int64
	RunCount           atomic.Int64
	RunErrors          atomic.Int64
	RunTotalNanos      atomic.Int64
}

// RecordEncode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEncode(duration time.Duration, err error) {
	b.EncodeCount.Add(1)
	if err != nil {
		b.EncodeErrors.Add(1)
	}
}

// RecordDistance implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDistance(duration time.Duration, err error) {
	b.DistanceCount.Add(1)
	b.DistanceTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DistanceErrors.Add(1)
	}
}

// RecordScan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScan(duration time.Duration, err error) {
	b.ScanCount.Add(1)
	b.ScanTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ScanErrors.Add(1)
	}
}

// RecordValidate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordValidate(duration time.Duration, err error) {
	b.ValidateCount.Add(1)
	b.ValidateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ValidateErrors.Add(1)
	}
}

// RecordProfile implements MetricsCollector.
func (b *BasicMetricsCollector) RecordProfile(duration time.Duration, err error) {
	b.ProfileCount.Add(1)
	if err != nil {
		b.ProfileErrors.Add(1)
	}
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		EncodeCount:      b.EncodeCount.Load(),
		EncodeErrors:     b.EncodeErrors.Load(),
		DistanceCount:    b.DistanceCount.Load(),
		DistanceErrors:   b.DistanceErrors.Load(),
		DistanceAvgNanos: b.getAvgDistanceNanos(),
		ScanCount:        b.ScanCount.Load(),
		ScanErrors:       b.ScanErrors.Load(),
		ScanAvgNanos:     b.getAvgScanNanos(),
		ValidateCount:    b.ValidateCount.Load(),
		ValidateErrors:   b.ValidateErrors.Load(),
		ValidateAvgNanos: b.getAvgValidateNanos(),
		ProfileCount:     b.ProfileCount.Load(),
		ProfileErrors:    b.ProfileErrors.Load(),
		RunCount:         b.RunCount.Load(),
		RunErrors:        b.RunErrors.Load(),
		RunAvgNanos:      b.getAvgRunNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgDistanceNanos() int64 {
	count := b.DistanceCount.Load()
	if count == 0 {
		return 0
	}
	return b.DistanceTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgScanNanos() int64 {
	count := b.ScanCount.Load()
	if count == 0 {
		return 0
	}
	return b.ScanTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgValidateNanos() int64 {
	count := b.ValidateCount.Load()
	if count == 0 {
		return 0
	}
	return b.ValidateTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgRunNanos() int64 {
	count := b.RunCount.Load()
	if count == 0 {
		return 0
	}
	return b.RunTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	EncodeCount      int64
	EncodeErrors     int64
	DistanceCount    int64
	DistanceErrors   int64
	DistanceAvgNanos int64
	ScanCount        int64
	ScanErrors       int64
	ScanAvgNanos     int64
	ValidateCount    int64
	ValidateErrors   int64
	ValidateAvgNanos int64
	ProfileCount     int64
	ProfileErrors    int64
	RunCount         int64
	RunErrors        int64
	RunAvgNanos      int64
}
