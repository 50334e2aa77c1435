package export

import (
	"encoding/csv"
	"io"

	"telehealth/internal/domain"
)

// CSVWriter wraps csv.Writer for exporting readings.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteReadings converts readings to rows and writes them.
func (w *CSVWriter) WriteReadings(readings []domain.HealthReading) error {
	for i := range readings {
		if err := w.csv.Write(readingToRow(&readings[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}
