// Package config provides YAML-based project configuration for seqsift.
package config

import "github.com/Sumatoshi-tech/seqsift/pkg/multiqc"

// Outlier detection defaults.
const (
	DefaultStatistic        = string(multiqc.StatisticMedian)
	DefaultOutlierThreshold = 2.0
	DefaultFillValue        = 0.0
)
