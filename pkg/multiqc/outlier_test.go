package multiqc_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Sumatoshi-tech/seqsift/pkg/multiqc"
)

func TestDetectOutliers_ThresholdSweep(t *testing.T) {
	t.Parallel()

	store := loadFixture(t)

	tests := []struct {
		name      string
		threshold float64
		want      int
	}{
		{name: "half sigma", threshold: 0.5, want: 10},
		{name: "one sigma", threshold: 1, want: 5},
		{name: "unreachable", threshold: 99999, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			outliers, err := store.DetectOutliers("forward-percent_duplicates", tt.threshold, nil)
			require.NoError(t, err)
			assert.Len(t, outliers, tt.want)
		})
	}
}

func TestDetectOutliers_HigherThresholdFlagsSubset(t *testing.T) {
	t.Parallel()

	store := loadFixture(t)

	loose, err := store.DetectOutliers("forward-percent_duplicates", 0.5, nil)
	require.NoError(t, err)

	strict, err := store.DetectOutliers("forward-percent_duplicates", 1, nil)
	require.NoError(t, err)

	flagged := make(map[string]struct{}, len(loose))
	for _, o := range loose {
		flagged[o.Label] = struct{}{}
	}

	for _, o := range strict {
		assert.Contains(t, flagged, o.Label)
	}
}

// triadDoc holds one scalar key with forward values [1, 2, 3] and constant
// reverse values.
const triadDoc = `{
  "report_general_stats_data": [{
    "a1_R1_.fq": {"v": 1}, "a1_R2.fq": {"v": 9},
    "b2_R1_.fq": {"v": 2}, "b2_R2.fq": {"v": 9},
    "c3_R1_.fq": {"v": 3}, "c3_R2.fq": {"v": 9}
  }],
  "report_plot_data": {}
}`

func parseTriad(t *testing.T, opts ...multiqc.Option) *multiqc.Store {
	t.Helper()

	store, err := multiqc.Parse(strings.NewReader(triadDoc), []string{"a1", "b2", "c3"}, opts...)
	require.NoError(t, err)

	return store
}

func TestDetectOutliers_ThresholdIsExclusive(t *testing.T) {
	t.Parallel()

	store := parseTriad(t)

	// Values [1, 2, 3] score [1, 0, 1]: a score equal to the threshold is
	// not flagged.
	onSigma, err := store.DetectOutliers("forward-v", 1, nil)
	require.NoError(t, err)
	assert.Empty(t, onSigma)

	below, err := store.DetectOutliers("forward-v", 0.999, nil)
	require.NoError(t, err)
	require.Len(t, below, 2)

	assert.Equal(t, "a1", below[0].Label)
	assert.InDelta(t, 1, below[0].Score, 1e-12)
	assert.Equal(t, "c3", below[1].Label)
	assert.InDelta(t, 1, below[1].Score, 1e-12)
}

func TestDetectOutliers_ZeroSpreadSkipsScoring(t *testing.T) {
	t.Parallel()

	store := parseTriad(t)

	outliers, err := store.DetectOutliers("reverse-v", 0.1, nil)
	require.NoError(t, err)
	assert.Empty(t, outliers)
}

func TestDetectOutliers_PopulationTooSmall(t *testing.T) {
	t.Parallel()

	store := parseTriad(t)

	_, err := store.DetectOutliers("forward-v", 1, []string{"a1"})
	require.ErrorIs(t, err, multiqc.ErrValidation)
}

func TestDetectOutliers_UnknownKey(t *testing.T) {
	t.Parallel()

	store := parseTriad(t)

	_, err := store.DetectOutliers("forward-w", 1, nil)
	require.ErrorIs(t, err, multiqc.ErrValidation)
}

// paddedDoc holds one curve key where only sample av carries bin 2, so
// scoring pads the other samples with the fill value.
const paddedDoc = `{
  "report_general_stats_data": [],
  "report_plot_data": {
    "depth": {
      "plot_type": "xy_line",
      "datasets": [[
        {"name": "av_R1_.fq", "data": [[1, 7], [2, 5]]},
        {"name": "bw_R1_.fq", "data": [[1, 7]]},
        {"name": "cx_R1_.fq", "data": [[1, 7]]},
        {"name": "av_R2.fq", "data": [[1, 3]]},
        {"name": "bw_R2.fq", "data": [[1, 3]]},
        {"name": "cx_R2.fq", "data": [[1, 3]]}
      ]],
      "config": {"ylab": "x", "xlab": "pos"}
    }
  }
}`

func parsePadded(t *testing.T, opts ...multiqc.Option) *multiqc.Store {
	t.Helper()

	store, err := multiqc.Parse(strings.NewReader(paddedDoc), []string{"av", "bw", "cx"}, opts...)
	require.NoError(t, err)

	return store
}

func TestDetectOutliers_PadsShortBins(t *testing.T) {
	t.Parallel()

	store := parsePadded(t)

	// Bin 1 is constant and skipped. Bin 2 pads to [5, 0, 0], scoring
	// sample av at sqrt(3) against median 0.
	outliers, err := store.DetectOutliers("forward-depth", 1.5, nil)
	require.NoError(t, err)
	require.Len(t, outliers, 1)

	assert.Equal(t, "av:2", outliers[0].Label)
	assert.InDelta(t, math.Sqrt(3), outliers[0].Score, 1e-12)
}

func TestDetectOutliers_FillValueLevelsBins(t *testing.T) {
	t.Parallel()

	store := parsePadded(t, multiqc.WithFillValue(5))

	// Padding with 5 turns bin 2 into [5, 5, 5], which is skipped like any
	// other zero-spread sequence.
	outliers, err := store.DetectOutliers("forward-depth", 0.1, nil)
	require.NoError(t, err)
	assert.Empty(t, outliers)
}

func TestDetectSubsetOutliers(t *testing.T) {
	t.Parallel()

	store := loadFixture(t)

	_, err := store.CompileNamed(lrtnSamples(), "left-respiratory", "reverse-percent_gc")
	require.NoError(t, err)

	// LRTN reverse GC values [52 52 53 51 52 52 53 53 53] score 0 at the
	// median and about 1.414 elsewhere.
	flagged, err := store.DetectSubsetOutliers("left-respiratory", "reverse-percent_gc", 0.9)
	require.NoError(t, err)
	assert.Len(t, flagged, 5)

	none, err := store.DetectSubsetOutliers("left-respiratory", "reverse-percent_gc", 1.5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDetectSubsetOutliers_UnknownName(t *testing.T) {
	t.Parallel()

	store := loadFixture(t)

	_, err := store.DetectSubsetOutliers("never-compiled", "reverse-percent_gc", 1)
	require.ErrorIs(t, err, multiqc.ErrValidation)
}

func TestDetectSubsetOutliers_KeepsAggregateIntact(t *testing.T) {
	t.Parallel()

	store := loadFixture(t)

	_, err := store.CompileNamed(fixtureSamples, "everything", "forward-fastqc_adapter_content_plot")
	require.NoError(t, err)

	_, err = store.DetectSubsetOutliers("everything", "forward-fastqc_adapter_content_plot", 0.1)
	require.NoError(t, err)

	cached, err := store.Subset("everything", "forward-fastqc_adapter_content_plot")
	require.NoError(t, err)

	indexed, ok := cached.Aggregate.(multiqc.IndexedAggregate)
	require.True(t, ok)

	// Scoring pads a scratch copy; the cached ragged bin stays short.
	assert.Len(t, indexed.Values["45"], 12)
}

func TestDetectOutliers_RecordsScanMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	store := loadFixture(t, multiqc.WithMeter(mp.Meter("test")))

	outliers, err := store.DetectOutliers("forward-percent_duplicates", 0.5, nil)
	require.NoError(t, err)
	require.Len(t, outliers, 10)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(1), counterValue(t, rm, "seqsift.outlier.scans.total"))
	assert.Equal(t, int64(10), counterValue(t, rm, "seqsift.outliers.flagged.total"))
	assert.Equal(t, int64(1), counterValue(t, rm, "seqsift.subsets.compiled.total"))

	duration := findMetric(rm, "seqsift.outlier.scan.duration.seconds")
	require.NotNil(t, duration, "scan duration histogram should exist")
}

func TestDetectOutliers_LabelsBelongToSubset(t *testing.T) {
	t.Parallel()

	store := loadFixture(t)

	outliers, err := store.DetectOutliers("forward-percent_duplicates", 0.5, lrtnSamples())
	require.NoError(t, err)

	members := make(map[string]struct{})
	for _, sample := range lrtnSamples() {
		members[sample] = struct{}{}
	}

	for _, o := range outliers {
		assert.Contains(t, members, o.Label)
	}
}
