package dataset

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/meterlab/farecast/pkg/errors"
)

// Writer serializes predicted trips to a CSV file. The file is created (or
// truncated) up front and the 8-column header is written immediately, so two
// writes of the same rows produce byte-identical files.
type Writer struct {
	file *os.File
	csv  *csv.Writer
}

// NewWriter creates or truncates the CSV file at path and writes the header.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create output file %q", path)
	}

	w := csv.NewWriter(f)
	if err := w.Write(OutputHeader); err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "failed to write header of %q", path)
	}

	return &Writer{file: f, csv: w}, nil
}

// Write appends one predicted trip. The first seven fields echo the input
// record unchanged, TripTime included; PredictedFareAmount is the eighth.
func (w *Writer) Write(p PredictedTrip) error {
	row := []string{
		p.VendorID,
		p.RateCode,
		strconv.Itoa(p.PassengerCount),
		strconv.Itoa(p.TripTime),
		strconv.FormatFloat(p.TripDistance, 'g', -1, 64),
		p.PaymentType,
		strconv.FormatFloat(p.FareAmount, 'g', -1, 64),
		strconv.FormatFloat(p.PredictedFareAmount, 'g', -1, 64),
	}
	if err := w.csv.Write(row); err != nil {
		return errors.Wrap(err, "failed to write prediction row")
	}
	return nil
}

// Close flushes buffered rows and closes the file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		_ = w.file.Close()
		return errors.Wrap(err, "failed to flush prediction rows")
	}
	return w.file.Close()
}

// WritePredictions writes all predictions to path in slice order, overwriting
// any existing file. Rows are not sorted, filtered, or deduplicated.
func WritePredictions(path string, predictions []PredictedTrip) error {
	w, err := NewWriter(path)
	if err != nil {
		return err
	}
	for _, p := range predictions {
		if err := w.Write(p); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}
