package multiqc

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
)

// Plot types recognized by extraction.
const (
	plotTypeBar = "bar_graph"
	plotTypeXY  = "xy_line"
)

// pointElems is the element count of an [x, y] curve point.
const pointElems = 2

// extractor walks a decoded report and accumulates per-sample metrics.
// Later sections silently overwrite earlier metrics sharing a key.
type extractor struct {
	samples []string
	labels  map[string]string
	log     *slog.Logger

	records  map[string]map[string]Metric
	keyOrder []string
}

func newExtractor(samples []string, labels map[string]string, log *slog.Logger) *extractor {
	records := make(map[string]map[string]Metric, len(samples))
	for _, sample := range samples {
		records[sample] = make(map[string]Metric)
	}

	return &extractor{
		samples: samples,
		labels:  labels,
		log:     log,
		records: records,
	}
}

// run processes both report sections, then verifies every sample ended up
// with the key set discovered for the first configured sample.
func (e *extractor) run(doc *rawReport) error {
	if err := e.generalStats(doc.GeneralStats); err != nil {
		return err
	}

	if err := e.plots(doc.Plots); err != nil {
		return err
	}

	return e.checkUniform()
}

// record stores m for sample, tracking key discovery order through the first
// configured sample.
func (e *extractor) record(sample, key string, m Metric) {
	if sample == e.samples[0] {
		if _, ok := e.records[sample][key]; !ok {
			e.keyOrder = append(e.keyOrder, key)
		}
	}

	e.records[sample][key] = m
}

// generalStats records one scalar per file and field. The field name doubles
// as the unit annotation.
func (e *extractor) generalStats(sections []orderedObject[orderedObject[json.Number]]) error {
	for _, section := range sections {
		for _, file := range section {
			sample, err := resolveSample(file.key, e.samples)
			if err != nil {
				return err
			}

			label, err := labelFile(file.key, e.labels)
			if err != nil {
				return err
			}

			for _, field := range file.value {
				value, err := field.value.Float64()
				if err != nil {
					return fmt.Errorf("%w: field %q of file %q: %v", ErrExtraction, field.key, file.key, err)
				}

				key := label + "-" + field.key
				e.record(sample, key, ScalarMetric{Key: key, Units: field.key, Value: value})
			}
		}
	}

	return nil
}

// plots dispatches each descriptor by plot type, in document order.
func (e *extractor) plots(plots orderedObject[rawPlot]) error {
	for _, plot := range plots {
		e.log.Debug("extracting plot", "plot", plot.key, "type", plot.value.PlotType)

		var err error

		switch plot.value.PlotType {
		case plotTypeBar:
			err = e.barGraph(plot.key, plot.value)
		case plotTypeXY:
			err = e.xyLine(plot.key, plot.value)
		default:
			err = fmt.Errorf("%w: plot %q has unimplemented type %q", ErrExtraction, plot.key, plot.value.PlotType)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// barGraph records one scalar per file and series. Bar descriptors carry
// exactly one sample group and one dataset group; series values align
// positionally with the sample group.
func (e *extractor) barGraph(name string, plot rawPlot) error {
	if len(plot.Samples) != 1 {
		return fmt.Errorf("%w: bar plot %q has %d sample groups, want 1", ErrExtraction, name, len(plot.Samples))
	}

	var groups [][]rawBarSeries

	if err := json.Unmarshal(plot.Datasets, &groups); err != nil {
		return fmt.Errorf("%w: bar plot %q datasets: %v", ErrExtraction, name, err)
	}

	if len(groups) != 1 {
		return fmt.Errorf("%w: bar plot %q has %d dataset groups, want 1", ErrExtraction, name, len(groups))
	}

	files := plot.Samples[0]

	for _, series := range groups[0] {
		if len(series.Data) != len(files) {
			return fmt.Errorf("%w: bar plot %q series %q has %d values for %d files",
				ErrExtraction, name, series.Name, len(series.Data), len(files))
		}

		for i, file := range files {
			sample, err := resolveSample(file, e.samples)
			if err != nil {
				return err
			}

			label, err := labelFile(file, e.labels)
			if err != nil {
				return err
			}

			value, err := series.Data[i].Float64()
			if err != nil {
				return fmt.Errorf("%w: bar plot %q series %q value %d: %v", ErrExtraction, name, series.Name, i, err)
			}

			key := label + "-" + name + "-" + series.Name
			e.record(sample, key, ScalarMetric{Key: key, Units: plot.Config.YLab, Value: value})
		}
	}

	return nil
}

// xyLine records one indexed metric per file and dataset group. With more
// than one group, each group's data label joins the key.
func (e *extractor) xyLine(name string, plot rawPlot) error {
	var groups [][]rawXYSeries

	if err := json.Unmarshal(plot.Datasets, &groups); err != nil {
		return fmt.Errorf("%w: xy plot %q datasets: %v", ErrExtraction, name, err)
	}

	multi := len(groups) > 1
	if multi && len(plot.Config.DataLabels) < len(groups) {
		return fmt.Errorf("%w: xy plot %q has %d dataset groups but %d data labels",
			ErrExtraction, name, len(groups), len(plot.Config.DataLabels))
	}

	for i, group := range groups {
		var suffix string
		if multi {
			suffix = "-" + plot.Config.DataLabels[i].Name
		}

		for _, series := range group {
			sample, err := resolveSample(series.Name, e.samples)
			if err != nil {
				return err
			}

			label, err := labelFile(series.Name, e.labels)
			if err != nil {
				return err
			}

			bins, values, err := curvePoints(plot.Config.Categories, series)
			if err != nil {
				return fmt.Errorf("%w: xy plot %q series %q: %v", ErrExtraction, name, series.Name, err)
			}

			key := label + "-" + name + suffix
			e.record(sample, key, IndexedMetric{
				Key:      key,
				Units:    plot.Config.YLab,
				BinUnits: plot.Config.XLab,
				Bins:     bins,
				Values:   values,
			})
		}
	}

	return nil
}

// curvePoints decodes one series into ordered bin labels and their values.
// With categories configured the data are bare numbers paired positionally
// with the category list; otherwise each element is an [x, y] pair. A
// repeated bin label overwrites the previous value.
func curvePoints(categories []json.RawMessage, series rawXYSeries) ([]string, map[string]float64, error) {
	bins := make([]string, 0, len(series.Data))
	values := make(map[string]float64, len(series.Data))

	record := func(raw json.RawMessage, num json.Number) error {
		bin, err := binLabel(raw)
		if err != nil {
			return err
		}

		value, err := num.Float64()
		if err != nil {
			return err
		}

		if _, seen := values[bin]; !seen {
			bins = append(bins, bin)
		}

		values[bin] = value

		return nil
	}

	if len(categories) > 0 {
		if len(series.Data) > len(categories) {
			return nil, nil, fmt.Errorf("%d values for %d categories", len(series.Data), len(categories))
		}

		for i, raw := range series.Data {
			var num json.Number

			if err := json.Unmarshal(raw, &num); err != nil {
				return nil, nil, err
			}

			if err := record(categories[i], num); err != nil {
				return nil, nil, err
			}
		}

		return bins, values, nil
	}

	for _, raw := range series.Data {
		var point []json.RawMessage

		if err := json.Unmarshal(raw, &point); err != nil {
			return nil, nil, err
		}

		if len(point) != pointElems {
			return nil, nil, fmt.Errorf("point has %d elements, want %d", len(point), pointElems)
		}

		var num json.Number

		if err := json.Unmarshal(point[1], &num); err != nil {
			return nil, nil, err
		}

		if err := record(point[0], num); err != nil {
			return nil, nil, err
		}
	}

	return bins, values, nil
}

// binLabel renders a JSON scalar as a bin label. Strings pass through,
// numbers keep their literal text so 40 and 40.0 stay distinct labels.
func binLabel(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string

		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}

		return s, nil
	}

	var n json.Number

	if err := json.Unmarshal(trimmed, &n); err != nil {
		return "", err
	}

	return n.String(), nil
}

// checkUniform verifies every sample carries exactly the keys discovered for
// the first configured sample.
func (e *extractor) checkUniform() error {
	for _, sample := range e.samples {
		keys := e.records[sample]

		if len(keys) != len(e.keyOrder) {
			return fmt.Errorf("%w: sample %q has %d metrics, want %d", ErrExtraction, sample, len(keys), len(e.keyOrder))
		}

		for _, key := range e.keyOrder {
			if _, ok := keys[key]; !ok {
				return fmt.Errorf("%w: sample %q is missing metric %q", ErrExtraction, sample, key)
			}
		}
	}

	return nil
}
