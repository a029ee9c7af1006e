package fare

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/meterlab/farecast/dataset"
	"github.com/meterlab/farecast/pkg/errors"
	"github.com/meterlab/farecast/pkg/log"
)

// syntheticTrips builds a learnable fixture: fare grows linearly with
// distance, with a vendor-dependent base.
func syntheticTrips(n int) []dataset.Trip {
	vendors := []string{"CMT", "VTS"}
	payments := []string{"CRD", "CSH"}
	trips := make([]dataset.Trip, 0, n)
	for i := 0; i < n; i++ {
		vendor := vendors[i%2]
		base := 3.0
		if vendor == "VTS" {
			base = 4.0
		}
		distance := 0.5 + float64(i%17)*0.45
		trips = append(trips, dataset.Trip{
			VendorID:       vendor,
			RateCode:       "1",
			PassengerCount: 1 + i%3,
			TripTime:       300 + i*30,
			TripDistance:   distance,
			PaymentType:    payments[(i/2)%2],
			FareAmount:     base + 2.5*distance,
		})
	}
	return trips
}

func testParams() Params {
	p := DefaultParams()
	p.NumIterations = 30
	p.MaxDepth = 4
	return p
}

func TestTrainAndPredict(t *testing.T) {
	trips := syntheticTrips(60)
	model, err := Train(testParams(), trips)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	for _, trip := range trips[:5] {
		estimate, err := Predict(model, trip)
		if err != nil {
			t.Fatalf("Predict failed: %v", err)
		}
		if math.IsNaN(estimate) || math.IsInf(estimate, 0) {
			t.Fatalf("prediction is not finite: %v", estimate)
		}
		if estimate <= 0 {
			t.Errorf("fare estimate should be positive, got %v", estimate)
		}
	}
}

func TestTrainLogsStructuredFields(t *testing.T) {
	tl, _ := log.NewTestLogger(log.LevelDebug)
	restore := log.SetLoggerForTesting(tl)
	defer restore()

	trips := syntheticTrips(60)
	params := testParams()
	if _, err := Train(params, trips); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	entries, err := tl.Entries()
	if err != nil {
		t.Fatalf("decoding log entries: %v", err)
	}

	var fitted map[string]interface{}
	for _, entry := range entries {
		if entry["message"] == "model trained" {
			fitted = entry
			break
		}
	}
	if fitted == nil {
		t.Fatal("no 'model trained' record captured")
	}
	if fitted[log.OperationKey] != "fit" {
		t.Errorf("operation = %v, want fit", fitted[log.OperationKey])
	}
	if fitted[log.SamplesKey] != float64(len(trips)) {
		t.Errorf("samples = %v, want %d", fitted[log.SamplesKey], len(trips))
	}
	if fitted[log.TreesKey] != float64(params.NumIterations) {
		t.Errorf("trees = %v, want %d", fitted[log.TreesKey], params.NumIterations)
	}
	if fitted[log.ComponentKey] != "fare" {
		t.Errorf("component = %v, want fare", fitted[log.ComponentKey])
	}
}

func TestTrainEmptySet(t *testing.T) {
	_, err := Train(testParams(), nil)
	if err == nil {
		t.Fatal("expected error for empty training set")
	}
	if !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("expected ErrEmptyData, got %v", err)
	}
}

func TestPredictAllPreservesRecords(t *testing.T) {
	trips := syntheticTrips(40)
	model, err := Train(testParams(), trips)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	predictions, err := PredictAll(model, trips)
	if err != nil {
		t.Fatalf("PredictAll failed: %v", err)
	}
	if len(predictions) != len(trips) {
		t.Fatalf("expected %d predictions, got %d", len(trips), len(predictions))
	}
	for i, p := range predictions {
		if p.Trip != trips[i] {
			t.Errorf("row %d: source fields changed: got %+v, want %+v", i, p.Trip, trips[i])
		}
	}
}

func TestPredictUnseenCategory(t *testing.T) {
	trips := syntheticTrips(40)
	model, err := Train(testParams(), trips)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	unseen := trips[0]
	unseen.VendorID = "DDS"
	estimate, err := Predict(model, unseen)
	if err != nil {
		t.Fatalf("Predict failed on unseen vendor: %v", err)
	}
	if math.IsNaN(estimate) || math.IsInf(estimate, 0) {
		t.Errorf("prediction for unseen category is not finite: %v", estimate)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	trips := syntheticTrips(50)
	model, err := Train(testParams(), trips)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "model.gob")
	if err := Save(model, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for _, trip := range trips[:10] {
		want, err := Predict(model, trip)
		if err != nil {
			t.Fatalf("Predict on original failed: %v", err)
		}
		got, err := Predict(loaded, trip)
		if err != nil {
			t.Fatalf("Predict on loaded model failed: %v", err)
		}
		if got != want {
			t.Errorf("loaded model disagrees: got %v, want %v", got, want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.gob"))
	if err == nil {
		t.Fatal("expected error for missing model file")
	}
}

func TestPredictFile(t *testing.T) {
	trips := syntheticTrips(30)
	model, err := Train(testParams(), trips)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	dir := t.TempDir()
	dataPath := filepath.Join(dir, "trips.csv")
	writeTripsCSV(t, dataPath, trips)

	outPath := filepath.Join(dir, "predicted.csv")
	if err := PredictFile(model, dataPath, outPath); err != nil {
		t.Fatalf("PredictFile failed: %v", err)
	}

	first, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(first)), "\n")
	if len(lines) != len(trips)+1 {
		t.Fatalf("expected %d lines, got %d", len(trips)+1, len(lines))
	}
	wantHeader := "VendorId,RateCode,PassengerCount,TripTime,TripDistance,PaymentType,FareAmount,PredictedFareAmount"
	if lines[0] != wantHeader {
		t.Errorf("header mismatch:\n got %q\nwant %q", lines[0], wantHeader)
	}

	// Same model, same input: the output must be reproducible byte for byte.
	if err := PredictFile(model, dataPath, outPath); err != nil {
		t.Fatalf("second PredictFile failed: %v", err)
	}
	second, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(first) != string(second) {
		t.Error("repeated runs produced different output")
	}
}

func TestPredictFileSingleRow(t *testing.T) {
	trips := syntheticTrips(30)
	model, err := Train(testParams(), trips)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	dir := t.TempDir()
	dataPath := filepath.Join(dir, "one.csv")
	writeTripsCSV(t, dataPath, trips[:1])

	outPath := filepath.Join(dir, "one_predicted.csv")
	if err := PredictFile(model, dataPath, outPath); err != nil {
		t.Fatalf("PredictFile failed: %v", err)
	}

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}

	fields := strings.Split(lines[1], ",")
	if len(fields) != 8 {
		t.Fatalf("expected 8 columns, got %d", len(fields))
	}
	gotPrefix := strings.Join(fields[:7], ",")
	input := trips[0]
	wantPrefix := strings.Join([]string{
		input.VendorID,
		input.RateCode,
		strconv.Itoa(input.PassengerCount),
		strconv.Itoa(input.TripTime),
		strconv.FormatFloat(input.TripDistance, 'g', -1, 64),
		input.PaymentType,
		strconv.FormatFloat(input.FareAmount, 'g', -1, 64),
	}, ",")
	if gotPrefix != wantPrefix {
		t.Errorf("first 7 fields changed:\n got %q\nwant %q", gotPrefix, wantPrefix)
	}

	predicted, err := strconv.ParseFloat(fields[7], 64)
	if err != nil {
		t.Fatalf("predicted fare is not a float: %v", err)
	}
	if math.IsNaN(predicted) || math.IsInf(predicted, 0) || predicted <= 0 {
		t.Errorf("predicted fare = %v, want a positive finite value", predicted)
	}
}

func TestPredictFileMissingInput(t *testing.T) {
	trips := syntheticTrips(20)
	model, err := Train(testParams(), trips)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	dir := t.TempDir()
	err = PredictFile(model, filepath.Join(dir, "absent.csv"), filepath.Join(dir, "out.csv"))
	if err == nil {
		t.Fatal("expected error for missing input file")
	}
}

// writeTripsCSV writes trips in the 7-column input schema for loader tests.
func writeTripsCSV(t *testing.T, path string, trips []dataset.Trip) {
	t.Helper()
	var b strings.Builder
	b.WriteString(strings.Join(dataset.Header, ",") + "\n")
	for _, trip := range trips {
		b.WriteString(strings.Join([]string{
			trip.VendorID,
			trip.RateCode,
			strconv.Itoa(trip.PassengerCount),
			strconv.Itoa(trip.TripTime),
			strconv.FormatFloat(trip.TripDistance, 'g', -1, 64),
			trip.PaymentType,
			strconv.FormatFloat(trip.FareAmount, 'g', -1, 64),
		}, ",") + "\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
}
