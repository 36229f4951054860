package multiqc

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/Sumatoshi-tech/seqsift/pkg/observability"
)

// minScoringPopulation is the smallest sample count a deviation score is
// defined for: the sample standard deviation needs at least two values.
const minScoringPopulation = 2

// DetectOutliers scores the metric stored under key across subset and
// returns the entries whose deviation exceeds threshold (strictly; a score
// equal to the threshold is not an outlier). An empty subset scores all
// configured samples.
//
// Scalar metrics yield one score per sample. Indexed metrics are scored per
// bin, in aggregate bin order, after right-padding each bin's values with the
// configured fill value up to the subset size; padding works on a scratch
// copy, so compiled aggregates stay untouched. A bin or metric with zero
// standard deviation is skipped with an informational log entry.
func (s *Store) DetectOutliers(key string, threshold float64, subset []string) ([]Outlier, error) {
	if len(subset) == 0 {
		subset = s.samples
	}

	agg, err := s.Compile(subset, key)
	if err != nil {
		return nil, err
	}

	return s.score(agg, subset, key, threshold)
}

// DetectSubsetOutliers scores a previously compiled named subset. See
// [Store.DetectOutliers] for the scoring rules.
func (s *Store) DetectSubsetOutliers(name, key string, threshold float64) ([]Outlier, error) {
	sub, err := s.Subset(name, key)
	if err != nil {
		return nil, err
	}

	return s.score(sub.Aggregate, sub.Samples, key, threshold)
}

func (s *Store) score(agg Aggregate, samples []string, key string, threshold float64) ([]Outlier, error) {
	if len(samples) < minScoringPopulation {
		return nil, fmt.Errorf("%w: outlier scoring needs at least %d samples, got %d",
			ErrValidation, minScoringPopulation, len(samples))
	}

	start := time.Now()

	var (
		outliers []Outlier
		err      error
	)

	switch a := agg.(type) {
	case ScalarAggregate:
		outliers, err = s.scoreScalar(a, samples, key, threshold)
	case IndexedAggregate:
		outliers, err = s.scoreIndexed(a, samples, key, threshold)
	default:
		err = fmt.Errorf("%w: unsupported aggregate kind for key %q", ErrExtraction, key)
	}

	if err != nil {
		return nil, err
	}

	s.log.Info("outlier scan finished", "key", key, "threshold", threshold, "flagged", len(outliers))

	s.metrics.RecordScan(context.Background(), observability.ScanStats{
		Kind:     aggregateKind(agg),
		Flagged:  len(outliers),
		Duration: time.Since(start),
	})

	return outliers, nil
}

func (s *Store) scoreScalar(agg ScalarAggregate, samples []string, key string, threshold float64) ([]Outlier, error) {
	scores, err := deviationScores(agg.Values)
	if err != nil {
		return nil, err
	}

	if scores == nil {
		s.log.Info("zero standard deviation, skipping outlier detection", "key", key)

		return nil, nil
	}

	var outliers []Outlier

	for i, score := range scores {
		if score > threshold {
			outliers = append(outliers, Outlier{Label: samples[i], Score: score})
		}
	}

	return outliers, nil
}

func (s *Store) scoreIndexed(agg IndexedAggregate, samples []string, key string, threshold float64) ([]Outlier, error) {
	var outliers []Outlier

	for _, bin := range agg.Bins {
		padded := padValues(agg.Values[bin], len(samples), s.fill)

		scores, err := deviationScores(padded)
		if err != nil {
			return nil, err
		}

		if scores == nil {
			s.log.Info("zero standard deviation in bin, skipping", "key", key, "bin", bin)

			continue
		}

		for i, score := range scores {
			if score > threshold {
				outliers = append(outliers, Outlier{Label: samples[i] + ":" + bin, Score: score})
			}
		}
	}

	return outliers, nil
}

// deviationScores returns |value - median| / stdev for each value, using the
// sample standard deviation. A zero standard deviation yields a nil slice,
// signalling the caller to skip the sequence.
func deviationScores(values []float64) ([]float64, error) {
	if len(values) < minScoringPopulation {
		return nil, fmt.Errorf("%w: need at least %d values to score, got %d",
			ErrValidation, minScoringPopulation, len(values))
	}

	stdev, err := stats.StandardDeviationSample(values)
	if err != nil {
		return nil, fmt.Errorf("%w: standard deviation: %v", ErrValidation, err)
	}

	if stdev == 0 {
		return nil, nil
	}

	center, err := stats.Median(values)
	if err != nil {
		return nil, fmt.Errorf("%w: median: %v", ErrValidation, err)
	}

	scores := make([]float64, len(values))
	for i, v := range values {
		scores[i] = math.Abs(v-center) / stdev
	}

	return scores, nil
}

// padValues right-pads values with fill up to size. The input is copied, so
// cached aggregates stay untouched.
func padValues(values []float64, size int, fill float64) []float64 {
	padded := make([]float64, 0, max(size, len(values)))
	padded = append(padded, values...)

	for len(padded) < size {
		padded = append(padded, fill)
	}

	return padded
}
