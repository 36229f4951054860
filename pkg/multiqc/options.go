package multiqc

import (
	"fmt"
	"io"
	"log/slog"
	"maps"

	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/seqsift/pkg/observability"
)

// Statistic selects the central statistic recorded on a store.
type Statistic string

// Accepted statistics.
const (
	// StatisticMedian centers deviation scores on the subset median.
	StatisticMedian Statistic = "median"
	// StatisticMean is accepted and reserved; scoring currently centers on
	// the median regardless of the recorded choice.
	StatisticMean Statistic = "mean"
)

// DefaultFillValue pads short per-bin sequences during outlier scoring.
const DefaultFillValue = 0.0

// Option configures store construction.
type Option func(*options) error

type options struct {
	labels    map[string]string
	statistic Statistic
	fill      float64
	log       *slog.Logger
	metrics   *observability.PipelineMetrics
}

func newOptions(opts []Option) (*options, error) {
	o := &options{
		labels:    DefaultFileLabels(),
		statistic: StatisticMedian,
		fill:      DefaultFillValue,
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	if o.log == nil {
		o.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return o, nil
}

// WithFileLabels replaces the substring-to-label mapping used to classify
// file names. The mapping must not be empty.
func WithFileLabels(labels map[string]string) Option {
	return func(o *options) error {
		if len(labels) == 0 {
			return fmt.Errorf("%w: empty file label mapping", ErrConfiguration)
		}

		o.labels = make(map[string]string, len(labels))
		maps.Copy(o.labels, labels)

		return nil
	}
}

// WithStatistic selects the central statistic recorded on the store. See
// [StatisticMean] for the current scoring behavior.
func WithStatistic(stat Statistic) Option {
	return func(o *options) error {
		switch stat {
		case StatisticMedian, StatisticMean:
			o.statistic = stat

			return nil
		default:
			return fmt.Errorf("%w: unknown statistic %q", ErrConfiguration, stat)
		}
	}
}

// WithFillValue sets the number used to right-pad short per-bin sequences
// during outlier scoring.
func WithFillValue(fill float64) Option {
	return func(o *options) error {
		o.fill = fill

		return nil
	}
}

// WithLogger sets the logger for pipeline events. A nil logger discards all
// output.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) error {
		o.log = log

		return nil
	}
}

// WithMeter wires OTel instrumentation for pipeline events. Without a meter
// the store records nothing.
func WithMeter(mt metric.Meter) Option {
	return func(o *options) error {
		pm, err := observability.NewPipelineMetrics(mt)
		if err != nil {
			return fmt.Errorf("%w: create metric instruments: %v", ErrConfiguration, err)
		}

		o.metrics = pm

		return nil
	}
}
