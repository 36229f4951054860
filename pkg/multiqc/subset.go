package multiqc

import (
	"context"
	"fmt"
	"slices"
)

// subsetKey identifies a cached compilation.
type subsetKey struct {
	name string
	key  string
}

// Compile aggregates the metric stored under key across subset, preserving
// subset order. The subset must be non-empty and contained in the configured
// samples, and key must be a discovered metric key.
func (s *Store) Compile(subset []string, key string) (Aggregate, error) {
	if err := s.validateSubset(subset); err != nil {
		return nil, err
	}

	if err := s.validateKey(key); err != nil {
		return nil, err
	}

	var (
		agg Aggregate
		err error
	)

	switch s.records[subset[0]][key].(type) {
	case ScalarMetric:
		agg, err = s.compileScalar(subset, key)
	case IndexedMetric:
		agg, err = s.compileIndexed(subset, key)
	default:
		err = fmt.Errorf("%w: key %q holds an unsupported metric kind", ErrExtraction, key)
	}

	if err != nil {
		return nil, err
	}

	s.metrics.RecordCompile(context.Background(), aggregateKind(agg))

	return agg, nil
}

// CompileNamed compiles subset under key and caches the result as name.
// Recompiling an existing name and key pair replaces the cached entry.
func (s *Store) CompileNamed(subset []string, name, key string) (*Subset, error) {
	agg, err := s.Compile(subset, key)
	if err != nil {
		return nil, err
	}

	sub := &Subset{
		Name:      name,
		Key:       key,
		Samples:   slices.Clone(subset),
		Aggregate: agg,
	}

	s.subsets[subsetKey{name: name, key: key}] = sub

	s.log.Debug("compiled subset", "name", name, "key", key, "samples", len(sub.Samples))

	return sub, nil
}

// Subset returns the cached compilation stored under name and key.
func (s *Store) Subset(name, key string) (*Subset, error) {
	sub, ok := s.subsets[subsetKey{name: name, key: key}]
	if !ok {
		return nil, fmt.Errorf("%w: no compiled subset %q for key %q", ErrValidation, name, key)
	}

	return sub, nil
}

func (s *Store) validateSubset(subset []string) error {
	if len(subset) == 0 {
		return fmt.Errorf("%w: empty subset", ErrValidation)
	}

	for _, sample := range subset {
		if _, ok := s.records[sample]; !ok {
			return fmt.Errorf("%w: subset sample %q is not configured", ErrValidation, sample)
		}
	}

	return nil
}

func (s *Store) validateKey(key string) error {
	if !slices.Contains(s.keys, key) {
		return fmt.Errorf("%w: unknown metric key %q", ErrValidation, key)
	}

	return nil
}

func (s *Store) compileScalar(subset []string, key string) (ScalarAggregate, error) {
	values := make([]float64, 0, len(subset))

	for _, sample := range subset {
		m, ok := s.records[sample][key].(ScalarMetric)
		if !ok {
			return ScalarAggregate{}, fmt.Errorf("%w: key %q mixes scalar and indexed values across samples", ErrExtraction, key)
		}

		values = append(values, m.Value)
	}

	return ScalarAggregate{Values: values}, nil
}

func (s *Store) compileIndexed(subset []string, key string) (IndexedAggregate, error) {
	agg := IndexedAggregate{Values: make(map[string][]float64)}

	for _, sample := range subset {
		m, ok := s.records[sample][key].(IndexedMetric)
		if !ok {
			return IndexedAggregate{}, fmt.Errorf("%w: key %q mixes scalar and indexed values across samples", ErrExtraction, key)
		}

		for _, bin := range m.Bins {
			if _, seen := agg.Values[bin]; !seen {
				agg.Bins = append(agg.Bins, bin)
			}

			agg.Values[bin] = append(agg.Values[bin], m.Values[bin])
		}
	}

	return agg, nil
}

func aggregateKind(agg Aggregate) string {
	switch agg.(type) {
	case ScalarAggregate:
		return "scalar"
	case IndexedAggregate:
		return "indexed"
	default:
		return "unknown"
	}
}
