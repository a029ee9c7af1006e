package dataset

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/meterlab/farecast/pkg/errors"
)

// Reader streams trip records from a comma-separated file with a header row.
// Rows are parsed one at a time; restarting a pass means reopening the file.
// Any malformed row aborts the stream with a SchemaError, there is no
// partial-load recovery.
type Reader struct {
	path string
	file *os.File
	csv  *csv.Reader
	line int // 1-based line of the last record handed out
}

// Open opens the file at path and consumes its header row.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open data file %q", path)
	}

	r := csv.NewReader(bufio.NewReader(file))
	r.FieldsPerRecord = -1 // width is checked per row for a precise error

	header, err := r.Read()
	if err == io.EOF {
		_ = file.Close()
		return nil, errors.NewSchemaError(path, 0, "", "missing header row")
	}
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(err, "failed to read header of %q", path)
	}
	if len(header) != NumColumns {
		_ = file.Close()
		return nil, errors.NewSchemaError(path, 1, "",
			"header has "+strconv.Itoa(len(header))+" columns, want "+strconv.Itoa(NumColumns))
	}

	return &Reader{path: path, file: file, csv: r, line: 1}, nil
}

// Next returns the next trip record. It returns io.EOF after the last row.
func (r *Reader) Next() (Trip, error) {
	record, err := r.csv.Read()
	if err == io.EOF {
		return Trip{}, io.EOF
	}
	r.line++
	if err != nil {
		return Trip{}, errors.NewSchemaError(r.path, r.line, "", err.Error())
	}
	if len(record) != NumColumns {
		return Trip{}, errors.NewSchemaError(r.path, r.line, "",
			"row has "+strconv.Itoa(len(record))+" columns, want "+strconv.Itoa(NumColumns))
	}
	return r.parseRow(record)
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

func (r *Reader) parseRow(record []string) (Trip, error) {
	var tr Trip
	tr.VendorID = record[0]
	tr.RateCode = record[1]

	passengers, err := strconv.Atoi(record[2])
	if err != nil {
		return Trip{}, errors.NewSchemaError(r.path, r.line, Header[2], "invalid integer "+strconv.Quote(record[2]))
	}
	tr.PassengerCount = passengers

	tripTime, err := strconv.Atoi(record[3])
	if err != nil {
		return Trip{}, errors.NewSchemaError(r.path, r.line, Header[3], "invalid integer "+strconv.Quote(record[3]))
	}
	tr.TripTime = tripTime

	distance, err := strconv.ParseFloat(record[4], 64)
	if err != nil {
		return Trip{}, errors.NewSchemaError(r.path, r.line, Header[4], "invalid float "+strconv.Quote(record[4]))
	}
	tr.TripDistance = distance

	tr.PaymentType = record[5]

	fare, err := strconv.ParseFloat(record[6], 64)
	if err != nil {
		return Trip{}, errors.NewSchemaError(r.path, r.line, Header[6], "invalid float "+strconv.Quote(record[6]))
	}
	tr.FareAmount = fare

	return tr, nil
}

// Load drains a Reader into memory. A header-only file yields an empty,
// non-nil slice; whether that is an error is the caller's decision.
func Load(path string) ([]Trip, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	trips := []Trip{}
	for {
		tr, err := r.Next()
		if err == io.EOF {
			return trips, nil
		}
		if err != nil {
			return nil, err
		}
		trips = append(trips, tr)
	}
}
