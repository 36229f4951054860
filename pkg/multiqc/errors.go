package multiqc

import "errors"

// Error classes returned by this package. Every error wraps exactly one of
// these sentinels; classify with [errors.Is].
var (
	// ErrConfiguration indicates invalid caller-supplied settings, such as a
	// file label mapping that matches a file name zero or multiple times.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrValidation indicates a request naming unknown samples, metric keys,
	// or subsets, or a sample population too small to score.
	ErrValidation = errors.New("validation failed")
	// ErrExtraction indicates report data violating the structural
	// assumptions extraction depends on. Extraction never yields a partial
	// store.
	ErrExtraction = errors.New("report extraction failed")
)
