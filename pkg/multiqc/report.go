package multiqc

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/pierrec/lz4/v4"
)

// rawReport is the decoded report envelope: the two top-level sections
// extraction reads.
type rawReport struct {
	GeneralStats []orderedObject[orderedObject[json.Number]] `json:"report_general_stats_data"`
	Plots        orderedObject[rawPlot]                      `json:"report_plot_data"`
}

// rawPlot is one plot descriptor from report_plot_data. Datasets stays raw
// because its element shape depends on the plot type.
type rawPlot struct {
	PlotType string          `json:"plot_type"`
	Samples  [][]string      `json:"samples"`
	Datasets json.RawMessage `json:"datasets"`
	Config   rawPlotConfig   `json:"config"`
}

// rawPlotConfig carries the descriptor options extraction reads.
type rawPlotConfig struct {
	YLab       string            `json:"ylab"`
	XLab       string            `json:"xlab"`
	Categories []json.RawMessage `json:"categories"`
	DataLabels []rawDataLabel    `json:"data_labels"`
}

// rawDataLabel names one dataset group of a multi-dataset xy plot.
type rawDataLabel struct {
	Name string `json:"name"`
}

// rawBarSeries is one named bar series with values aligned positionally with
// the plot's sample group.
type rawBarSeries struct {
	Name string        `json:"name"`
	Data []json.Number `json:"data"`
}

// rawXYSeries is one sample's curve in an xy plot. Data elements are [x, y]
// pairs, or bare numbers when the plot configures categories.
type rawXYSeries struct {
	Name string            `json:"name"`
	Data []json.RawMessage `json:"data"`
}

// entry is one member of an order-preserving JSON object.
type entry[T any] struct {
	key   string
	value T
}

// orderedObject decodes a JSON object keeping member order. Metric key
// discovery and plot handling follow document order, which Go maps discard.
type orderedObject[T any] []entry[T]

// UnmarshalJSON decodes the object token by token so member order survives.
// Numbers decode as [json.Number] to preserve their literal text.
func (o *orderedObject[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	*o = (*o)[:0]

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}

		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}

		var value T

		if err := dec.Decode(&value); err != nil {
			return err
		}

		*o = append(*o, entry[T]{key: key, value: value})
	}

	// Consume the closing brace.
	_, err = dec.Token()

	return err
}

// Compression magic bytes recognized by the reader.
var (
	gzipMagic = []byte{0x1f, 0x8b}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// decompress wraps r according to its leading magic bytes. Plain documents
// pass through untouched.
func decompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	// Peek tolerates documents shorter than the longest magic; a genuine
	// read failure resurfaces on decode.
	head, _ := br.Peek(len(lz4Magic))

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: open gzip stream: %v", ErrExtraction, err)
		}

		return zr, nil
	case bytes.HasPrefix(head, lz4Magic):
		return lz4.NewReader(br), nil
	default:
		return br, nil
	}
}

// decodeReport reads one report document, plain or compressed, validates the
// envelope, and decodes it. The returned size counts decoded bytes.
func decodeReport(r io.Reader) (*rawReport, int64, error) {
	plain, err := decompress(r)
	if err != nil {
		return nil, 0, err
	}

	data, err := io.ReadAll(plain)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read document: %v", ErrExtraction, err)
	}

	if err := validateEnvelope(data); err != nil {
		return nil, 0, err
	}

	var doc rawReport

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("%w: decode document: %v", ErrExtraction, err)
	}

	return &doc, int64(len(data)), nil
}
