// Package observability provides OTel metric instruments for report
// processing and a Prometheus scrape bridge to expose them.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricReportsTotal  = "seqsift.reports.loaded.total"
	metricReportBytes   = "seqsift.report.bytes"
	metricSamplesTotal  = "seqsift.samples.extracted.total"
	metricValuesTotal   = "seqsift.values.extracted.total"
	metricSubsetsTotal  = "seqsift.subsets.compiled.total"
	metricScansTotal    = "seqsift.outlier.scans.total"
	metricOutliersTotal = "seqsift.outliers.flagged.total"
	metricScanDuration  = "seqsift.outlier.scan.duration.seconds"

	attrKind = "kind"
)

// scanBucketBoundaries covers sub-millisecond in-memory scans up to
// multi-second runs over wide aggregates.
var scanBucketBoundaries = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5}

// reportSizeBoundaries buckets decoded report sizes from small single-module
// reports to archived multi-project ones.
var reportSizeBoundaries = []float64{1 << 10, 1 << 14, 1 << 17, 1 << 20, 1 << 23, 1 << 26, 1 << 28}

// PipelineMetrics holds OTel instruments for report-processing events.
type PipelineMetrics struct {
	reportsTotal  metric.Int64Counter
	reportBytes   metric.Float64Histogram
	samplesTotal  metric.Int64Counter
	valuesTotal   metric.Int64Counter
	subsetsTotal  metric.Int64Counter
	scansTotal    metric.Int64Counter
	outliersTotal metric.Int64Counter
	scanDuration  metric.Float64Histogram
}

// LoadStats holds the statistics for a single report load.
type LoadStats struct {
	ReportBytes int64
	Samples     int
	Values      int
}

// ScanStats holds the statistics for a single outlier scan.
type ScanStats struct {
	Kind     string
	Flagged  int
	Duration time.Duration
}

// NewPipelineMetrics creates pipeline metric instruments from the given meter.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	b := newMetricBuilder(mt)

	pm := &PipelineMetrics{
		reportsTotal:  b.counter(metricReportsTotal, "Total report documents loaded", "{report}"),
		reportBytes:   b.histogram(metricReportBytes, "Decoded report document size in bytes", "By", reportSizeBoundaries...),
		samplesTotal:  b.counter(metricSamplesTotal, "Total samples extracted from reports", "{sample}"),
		valuesTotal:   b.counter(metricValuesTotal, "Total metric values extracted from reports", "{value}"),
		subsetsTotal:  b.counter(metricSubsetsTotal, "Total subset compilations by aggregate kind", "{subset}"),
		scansTotal:    b.counter(metricScansTotal, "Total outlier scans by aggregate kind", "{scan}"),
		outliersTotal: b.counter(metricOutliersTotal, "Total outliers flagged by aggregate kind", "{outlier}"),
		scanDuration:  b.histogram(metricScanDuration, "Outlier scan duration in seconds", "s", scanBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return pm, nil
}

// RecordLoad records a completed report load.
// Safe to call on a nil receiver (no-op).
func (pm *PipelineMetrics) RecordLoad(ctx context.Context, stats LoadStats) {
	if pm == nil {
		return
	}

	pm.reportsTotal.Add(ctx, 1)
	pm.reportBytes.Record(ctx, float64(stats.ReportBytes))
	pm.samplesTotal.Add(ctx, int64(stats.Samples))
	pm.valuesTotal.Add(ctx, int64(stats.Values))
}

// RecordCompile records one subset compilation of the given aggregate kind.
// Safe to call on a nil receiver (no-op).
func (pm *PipelineMetrics) RecordCompile(ctx context.Context, kind string) {
	if pm == nil {
		return
	}

	pm.subsetsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrKind, kind)))
}

// RecordScan records a completed outlier scan.
// Safe to call on a nil receiver (no-op).
func (pm *PipelineMetrics) RecordScan(ctx context.Context, stats ScanStats) {
	if pm == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrKind, stats.Kind))

	pm.scansTotal.Add(ctx, 1, attrs)
	pm.outliersTotal.Add(ctx, int64(stats.Flagged), attrs)
	pm.scanDuration.Record(ctx, stats.Duration.Seconds(), attrs)
}
