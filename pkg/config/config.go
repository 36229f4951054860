package config

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/seqsift/pkg/multiqc"
)

// Config is the top-level configuration struct for seqsift.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Report      ReportConfig  `mapstructure:"report"`
	Samples     []string      `mapstructure:"samples"`
	SampleSheet string        `mapstructure:"sample_sheet"`
	FileLabels  []FileLabel   `mapstructure:"file_labels"`
	Outliers    OutlierConfig `mapstructure:"outliers"`
}

// ReportConfig locates the aggregated QC report on disk.
type ReportConfig struct {
	Path string `mapstructure:"path"`
}

// FileLabel maps a file name substring to a read-direction label. A list of
// pairs rather than a map because viper lowercases map keys read from config
// files, which would corrupt substrings like "_R1_".
type FileLabel struct {
	Substring string `mapstructure:"substring"`
	Label     string `mapstructure:"label"`
}

// OutlierConfig holds outlier detection settings.
type OutlierConfig struct {
	Statistic string  `mapstructure:"statistic"`
	Threshold float64 `mapstructure:"threshold"`
	FillValue float64 `mapstructure:"fill_value"`
}

// Sentinel errors for configuration validation.
var (
	// ErrNoSamples indicates neither an inline sample list nor a sample sheet is set.
	ErrNoSamples = errors.New("no samples configured: set samples or sample_sheet")
	// ErrDuplicateSample indicates the inline sample list repeats a name.
	ErrDuplicateSample = errors.New("samples must be unique")
	// ErrNoFileLabels indicates the label list has no entries.
	ErrNoFileLabels = errors.New("file_labels must list at least one entry")
	// ErrBlankFileLabel indicates a label entry with a missing part.
	ErrBlankFileLabel = errors.New("file_labels entries need both substring and label")
	// ErrInvalidStatistic indicates an unsupported outlier statistic name.
	ErrInvalidStatistic = errors.New("outliers.statistic must be median or mean")
	// ErrInvalidThreshold indicates the outlier threshold is not positive.
	ErrInvalidThreshold = errors.New("outliers.threshold must be positive")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Samples))

	for _, sample := range c.Samples {
		if _, ok := seen[sample]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateSample, sample)
		}

		seen[sample] = struct{}{}
	}

	if len(c.FileLabels) == 0 {
		return ErrNoFileLabels
	}

	for _, fl := range c.FileLabels {
		if fl.Substring == "" || fl.Label == "" {
			return ErrBlankFileLabel
		}
	}

	switch multiqc.Statistic(c.Outliers.Statistic) {
	case multiqc.StatisticMedian, multiqc.StatisticMean:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidStatistic, c.Outliers.Statistic)
	}

	if c.Outliers.Threshold <= 0 {
		return ErrInvalidThreshold
	}

	return nil
}

// LabelMap converts the file label entries into the substring mapping the
// metric store consumes.
func (c *Config) LabelMap() map[string]string {
	m := make(map[string]string, len(c.FileLabels))

	for _, fl := range c.FileLabels {
		m[fl.Substring] = fl.Label
	}

	return m
}

// ResolveSamples returns the sample names to analyze: the inline list when
// present, otherwise the contents of the sample sheet.
func (c *Config) ResolveSamples() ([]string, error) {
	if len(c.Samples) > 0 {
		return c.Samples, nil
	}

	if c.SampleSheet != "" {
		return LoadSamples(c.SampleSheet)
	}

	return nil, ErrNoSamples
}

// StoreOptions converts the config into store options for multiqc.Load.
func (c *Config) StoreOptions() []multiqc.Option {
	return []multiqc.Option{
		multiqc.WithFileLabels(c.LabelMap()),
		multiqc.WithStatistic(multiqc.Statistic(c.Outliers.Statistic)),
		multiqc.WithFillValue(c.Outliers.FillValue),
	}
}
