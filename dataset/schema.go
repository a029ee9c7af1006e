// Package dataset defines the taxi trip record schema and the CSV input and
// output layers built around it. Columns are mapped by fixed position, so the
// header row is consumed and validated for width only.
package dataset

import (
	"gonum.org/v1/gonum/mat"
)

// Trip is one input row of the taxi fare dataset.
//
// VendorID, RateCode and PaymentType are categorical codes kept as raw string
// tokens. TripTime is loaded and echoed into the prediction output but is
// deliberately excluded from the feature vector.
type Trip struct {
	VendorID       string
	RateCode       string
	PassengerCount int
	TripTime       int // seconds
	TripDistance   float64
	PaymentType    string
	FareAmount     float64 // ground-truth label, never overwritten
}

// PredictedTrip is a Trip augmented with the model's fare estimate.
// The embedded Trip is a copy; the source record is never mutated.
type PredictedTrip struct {
	Trip
	PredictedFareAmount float64
}

// NumColumns is the fixed width of an input row.
const NumColumns = 7

// Header is the column order of the input CSV.
var Header = []string{
	"VendorId", "RateCode", "PassengerCount", "TripTime",
	"TripDistance", "PaymentType", "FareAmount",
}

// OutputHeader is the column order of the prediction CSV: the input columns
// in the same order with PredictedFareAmount appended.
var OutputHeader = []string{
	"VendorId", "RateCode", "PassengerCount", "TripTime",
	"TripDistance", "PaymentType", "FareAmount", "PredictedFareAmount",
}

// Labels extracts the FareAmount column as a vector.
func Labels(trips []Trip) *mat.VecDense {
	y := mat.NewVecDense(len(trips), nil)
	for i, tr := range trips {
		y.SetVec(i, tr.FareAmount)
	}
	return y
}

// VendorIDs extracts the VendorID column.
func VendorIDs(trips []Trip) []string {
	out := make([]string, len(trips))
	for i, tr := range trips {
		out[i] = tr.VendorID
	}
	return out
}

// RateCodes extracts the RateCode column.
func RateCodes(trips []Trip) []string {
	out := make([]string, len(trips))
	for i, tr := range trips {
		out[i] = tr.RateCode
	}
	return out
}

// PaymentTypes extracts the PaymentType column.
func PaymentTypes(trips []Trip) []string {
	out := make([]string, len(trips))
	for i, tr := range trips {
		out[i] = tr.PaymentType
	}
	return out
}
