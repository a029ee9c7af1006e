package dataset

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/meterlab/farecast/pkg/errors"
)

const testHeader = "VendorId,RateCode,PassengerCount,TripTime,TripDistance,PaymentType,FareAmount\n"

func writeTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trips.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test CSV: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTestCSV(t, testHeader+
		"VTS,1,1,1140,3.75,CRD,15.5\n"+
		"CMT,1,2,480,1.2,CSH,6.0\n"+
		"VTS,2,1,300,0.5,CRD,4.5\n")

	trips, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(trips) != 3 {
		t.Fatalf("Load() returned %d rows, want 3", len(trips))
	}

	first := Trip{
		VendorID:       "VTS",
		RateCode:       "1",
		PassengerCount: 1,
		TripTime:       1140,
		TripDistance:   3.75,
		PaymentType:    "CRD",
		FareAmount:     15.5,
	}
	if trips[0] != first {
		t.Errorf("first row = %+v, want %+v", trips[0], first)
	}
}

func TestLoadMalformedRows(t *testing.T) {
	tests := []struct {
		name    string
		content string
		column  string
	}{
		{
			name:    "too few columns",
			content: testHeader + "VTS,1,1,1140,3.75,CRD\n",
		},
		{
			name:    "too many columns",
			content: testHeader + "VTS,1,1,1140,3.75,CRD,15.5,extra\n",
		},
		{
			name:    "non-numeric passenger count",
			content: testHeader + "VTS,1,two,1140,3.75,CRD,15.5\n",
			column:  "PassengerCount",
		},
		{
			name:    "non-numeric trip time",
			content: testHeader + "VTS,1,1,later,3.75,CRD,15.5\n",
			column:  "TripTime",
		},
		{
			name:    "non-numeric distance",
			content: testHeader + "VTS,1,1,1140,far,CRD,15.5\n",
			column:  "TripDistance",
		},
		{
			name:    "non-numeric fare",
			content: testHeader + "VTS,1,1,1140,3.75,CRD,cheap\n",
			column:  "FareAmount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestCSV(t, tt.content)

			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() should fail on malformed row")
			}

			var se *errors.SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("expected SchemaError, got %T: %v", err, err)
			}
			if se.Line != 2 {
				t.Errorf("SchemaError.Line = %d, want 2", se.Line)
			}
			if se.Column != tt.column {
				t.Errorf("SchemaError.Column = %q, want %q", se.Column, tt.column)
			}
		})
	}
}

func TestLoadHeaderOnly(t *testing.T) {
	path := writeTestCSV(t, testHeader)

	trips, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(trips) != 0 {
		t.Errorf("Load() returned %d rows, want 0", len(trips))
	}
}

func TestOpenEmptyFile(t *testing.T) {
	path := writeTestCSV(t, "")

	_, err := Open(path)
	if err == nil {
		t.Fatal("Open() should fail on a file with no header")
	}
	var se *errors.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %T: %v", err, err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "no-such-file.csv"))
	if err == nil {
		t.Fatal("Open() should fail on a missing file")
	}
}

func TestOpenWrongHeaderWidth(t *testing.T) {
	path := writeTestCSV(t, "VendorId,RateCode\n")

	_, err := Open(path)
	if err == nil {
		t.Fatal("Open() should reject a header with the wrong column count")
	}
}

func TestReaderStreamsIncrementally(t *testing.T) {
	path := writeTestCSV(t, testHeader+
		"VTS,1,1,1140,3.75,CRD,15.5\n"+
		"CMT,1,2,480,1.2,CSH,6.0\n")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	var count int
	for {
		_, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		count++
	}
	if count != 2 {
		t.Errorf("streamed %d rows, want 2", count)
	}
}

func TestLabels(t *testing.T) {
	trips := []Trip{
		{FareAmount: 8.5},
		{FareAmount: 12.0},
	}
	y := Labels(trips)
	if y.Len() != 2 || y.AtVec(0) != 8.5 || y.AtVec(1) != 12.0 {
		t.Errorf("Labels() = %v", y.RawVector().Data)
	}
}
