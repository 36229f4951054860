// Package multiqc parses MultiQC raw report documents into a per-sample
// metric store with subset aggregation and statistical outlier flagging.
//
// A report carries two sections: general statistics (one number per file and
// field) and plot data (bar graphs and xy line plots). Extraction resolves
// each file name to a configured sample and a read-direction label and stores
// one [Metric] per derived key. Sample subsets can then be aggregated per key
// and scanned for values deviating from the subset median.
package multiqc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/seqsift/pkg/observability"
)

// Store holds the extracted metrics for a fixed sample set. It is built once
// from one report document and never mutated afterwards; only the subset
// cache grows, through [Store.CompileNamed].
type Store struct {
	samples []string
	keys    []string
	records map[string]map[string]Metric
	subsets map[subsetKey]*Subset

	statistic Statistic
	fill      float64
	log       *slog.Logger
	metrics   *observability.PipelineMetrics
}

// Load reads the report document at path and builds a store for samples. The
// document may be plain JSON, gzip-compressed, or lz4-compressed.
func Load(path string, samples []string, opts ...Option) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open report: %v", ErrExtraction, err)
	}
	defer f.Close()

	return Parse(f, samples, opts...)
}

// Parse decodes one report document from r and builds a store for samples.
// Any structural violation aborts construction; there is no partial store.
func Parse(r io.Reader, samples []string, opts ...Option) (*Store, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples configured", ErrConfiguration)
	}

	seen := make(map[string]struct{}, len(samples))
	for _, sample := range samples {
		if _, dup := seen[sample]; dup {
			return nil, fmt.Errorf("%w: duplicate sample %q", ErrConfiguration, sample)
		}

		seen[sample] = struct{}{}
	}

	cfg, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	doc, size, err := decodeReport(r)
	if err != nil {
		return nil, err
	}

	ext := newExtractor(samples, cfg.labels, cfg.log)
	if err := ext.run(doc); err != nil {
		return nil, err
	}

	s := &Store{
		samples:   slices.Clone(samples),
		keys:      ext.keyOrder,
		records:   ext.records,
		subsets:   make(map[subsetKey]*Subset),
		statistic: cfg.statistic,
		fill:      cfg.fill,
		log:       cfg.log,
		metrics:   cfg.metrics,
	}

	s.log.Info("report loaded",
		"bytes", humanize.Bytes(uint64(size)),
		"samples", len(s.samples),
		"keys", len(s.keys))

	s.metrics.RecordLoad(context.Background(), observability.LoadStats{
		ReportBytes: size,
		Samples:     len(s.samples),
		Values:      len(s.samples) * len(s.keys),
	})

	return s, nil
}

// Samples returns the configured sample identifiers in order.
func (s *Store) Samples() []string {
	return slices.Clone(s.samples)
}

// Keys returns the metric keys in discovery order.
func (s *Store) Keys() []string {
	return slices.Clone(s.keys)
}

// Metric returns the value stored for sample under key.
func (s *Store) Metric(sample, key string) (Metric, error) {
	record, ok := s.records[sample]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sample %q", ErrValidation, sample)
	}

	m, ok := record[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown metric key %q", ErrValidation, key)
	}

	return m, nil
}

// Statistic returns the central statistic recorded at construction.
func (s *Store) Statistic() Statistic {
	return s.statistic
}
