package measurement

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// MeasurementExporter writes the collected values of a run, one value per
// call. v is an int64, uint32 or float64.
type MeasurementExporter interface {
	Write(metric string, measurement string, v interface{}) error
	io.Closer
}

type MakeMeasurementExporterFunc func(w io.WriteCloser) MeasurementExporter

var (
	MeasurementExporters = map[string]MakeMeasurementExporterFunc{
		"text": func(w io.WriteCloser) MeasurementExporter {
			return NewTextMeasurementExporter(w)
		},
		"json": func(w io.WriteCloser) MeasurementExporter {
			return newDocumentExporter(w, encodeJSON)
		},
		"yaml": func(w io.WriteCloser) MeasurementExporter {
			return newDocumentExporter(w, encodeYAML)
		},
	}
)

func NewMeasurementExporter(name string, w io.WriteCloser) (MeasurementExporter, error) {
	f, ok := MeasurementExporters[name]
	if !ok {
		return nil, errors.Errorf("unsupported measurement exporter: %s", name)
	}
	return f(w), nil
}

// closeAll closes the destination even if flushing failed, reporting the
// first error.
func closeAll(flushErr error, w io.Closer) error {
	err := w.Close()
	if flushErr != nil {
		return flushErr
	}
	return err
}

// TextMeasurementExporter prints "[metric], measurement, value" lines.
type TextMeasurementExporter struct {
	w   io.WriteCloser
	buf *bufio.Writer
}

func NewTextMeasurementExporter(w io.WriteCloser) *TextMeasurementExporter {
	return &TextMeasurementExporter{
		w:   w,
		buf: bufio.NewWriter(w),
	}
}

func (self *TextMeasurementExporter) Write(metric string, measurement string, v interface{}) error {
	_, err := fmt.Fprintf(self.buf, "[%s], %s, %v\n", metric, measurement, v)
	return err
}

func (self *TextMeasurementExporter) Close() error {
	return closeAll(self.buf.Flush(), self.w)
}

type Record struct {
	Metric      string      `json:"metric" yaml:"metric"`
	Measurement string      `json:"measurement" yaml:"measurement"`
	Value       interface{} `json:"value" yaml:"value"`
}

// documentExporter buffers every record and encodes them as one list when
// closed.
type documentExporter struct {
	w       io.WriteCloser
	encode  func(io.Writer, []Record) error
	records []Record
}

func newDocumentExporter(w io.WriteCloser, encode func(io.Writer, []Record) error) *documentExporter {
	return &documentExporter{
		w:       w,
		encode:  encode,
		records: make([]Record, 0, 64),
	}
}

func (self *documentExporter) Write(metric string, measurement string, v interface{}) error {
	self.records = append(self.records, Record{
		Metric:      metric,
		Measurement: measurement,
		Value:       v,
	})
	return nil
}

func (self *documentExporter) Close() error {
	return closeAll(self.encode(self.w, self.records), self.w)
}

func encodeJSON(w io.Writer, records []Record) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(records), "encode measurements")
}

func encodeYAML(w io.Writer, records []Record) error {
	data, err := yaml.Marshal(records)
	if err != nil {
		return errors.Wrap(err, "encode measurements")
	}
	_, err = w.Write(data)
	return err
}
