package multiqc

// Metric is one extracted measurement for one sample. The concrete kind is
// decided at extraction time and never changes: general statistics and bar
// graph entries yield a [ScalarMetric], xy line plots yield an
// [IndexedMetric]. Downstream code type-switches over the two variants.
type Metric interface {
	metric()
}

// ScalarMetric is a single number, such as a general statistic or one bar of
// a bar graph.
type ScalarMetric struct {
	Key   string
	Units string
	Value float64
}

func (ScalarMetric) metric() {}

// IndexedMetric is a per-sample curve with one value per bin. Bins keeps the
// labels in curve order; Values joins points across samples by bin label, not
// by position.
type IndexedMetric struct {
	Key      string
	Units    string
	BinUnits string
	Bins     []string
	Values   map[string]float64
}

func (IndexedMetric) metric() {}

// Aggregate is a metric combined across the samples of a subset. The kind
// mirrors the metric kind it was compiled from.
type Aggregate interface {
	aggregate()
}

// ScalarAggregate collects scalar values index-aligned with the compiled
// subset: Values[i] belongs to the i-th subset sample.
type ScalarAggregate struct {
	Values []float64
}

func (ScalarAggregate) aggregate() {}

// IndexedAggregate collects curve values per bin. Bins keeps first-seen
// order; each Values slice grows in subset iteration order and may be shorter
// than the subset when samples lack the bin.
type IndexedAggregate struct {
	Bins   []string
	Values map[string][]float64
}

func (IndexedAggregate) aggregate() {}

// Subset is a cached compilation of one metric across a named sample group.
// Stored subsets are never mutated; recompiling the same name and key
// replaces the entry.
type Subset struct {
	Name      string
	Key       string
	Samples   []string
	Aggregate Aggregate
}

// Outlier flags one aggregated value whose deviation score exceeded the
// threshold. Label is the sample identifier, or "sample:bin" for indexed
// metrics.
type Outlier struct {
	Label string
	Score float64
}
