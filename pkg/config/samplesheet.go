package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// sampleSheet mirrors the YAML layout of a standalone sample sheet file.
type sampleSheet struct {
	Samples []string `yaml:"samples"`
}

// LoadSamples reads sample names from a YAML sample sheet.
func LoadSamples(path string) ([]string, error) {
	raw, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, fmt.Errorf("read sample sheet: %w", readErr)
	}

	var sheet sampleSheet

	decodeErr := yaml.Unmarshal(raw, &sheet)
	if decodeErr != nil {
		return nil, fmt.Errorf("decode sample sheet: %w", decodeErr)
	}

	if len(sheet.Samples) == 0 {
		return nil, fmt.Errorf("sample sheet %s: %w", path, ErrNoSamples)
	}

	return sheet.Samples, nil
}
