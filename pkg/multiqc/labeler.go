package multiqc

import (
	"fmt"
	"strings"
)

// DefaultFileLabels returns the standard substring-to-label mapping for
// paired-end read files following the Illumina R1/R2 naming convention.
func DefaultFileLabels() map[string]string {
	return map[string]string{
		"_R1_": "forward",
		"_R2":  "reverse",
	}
}

// labelFile resolves the read-direction label for filename. Exactly one
// substring of the mapping must occur in the name.
func labelFile(filename string, labels map[string]string) (string, error) {
	var (
		label string
		hits  int
	)

	for substr, l := range labels {
		if strings.Contains(filename, substr) {
			label = l
			hits++
		}
	}

	switch hits {
	case 1:
		return label, nil
	case 0:
		return "", fmt.Errorf("%w: file %q matches no substring of label mapping %v", ErrConfiguration, filename, labels)
	default:
		return "", fmt.Errorf("%w: file %q matches %d substrings of label mapping %v", ErrConfiguration, filename, hits, labels)
	}
}

// resolveSample finds the configured sample whose identifier occurs in
// filename. Exactly one sample must match.
func resolveSample(filename string, samples []string) (string, error) {
	var (
		sample string
		hits   int
	)

	for _, s := range samples {
		if strings.Contains(filename, s) {
			sample = s
			hits++
		}
	}

	switch hits {
	case 1:
		return sample, nil
	case 0:
		return "", fmt.Errorf("%w: file %q matches no configured sample", ErrExtraction, filename)
	default:
		return "", fmt.Errorf("%w: file %q matches %d configured samples", ErrExtraction, filename, hits)
	}
}
