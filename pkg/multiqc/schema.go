package multiqc

import (
	_ "embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed report-schema.json
var reportSchema []byte

// validateEnvelope checks doc against the embedded envelope schema: both
// required top-level sections with the container shapes extraction assumes.
// Plot descriptors are checked structurally during extraction instead.
func validateEnvelope(doc []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(reportSchema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("%w: validate document: %v", ErrExtraction, err)
	}

	if !result.Valid() {
		return fmt.Errorf("%w: document violates report envelope: %s", ErrExtraction, result.Errors()[0])
	}

	return nil
}
