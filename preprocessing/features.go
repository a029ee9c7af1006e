package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/meterlab/farecast/core/model"
	"github.com/meterlab/farecast/dataset"
	"github.com/meterlab/farecast/pkg/errors"
)

// FeatureEncoder assembles the trainer's input vector from a trip record.
//
// The concatenation order is fixed and defines the trainer's input layout:
//
//	VendorID one-hot ++ RateCode one-hot ++ PaymentType one-hot ++
//	PassengerCount ++ TripDistance
//
// TripTime is loaded with the schema but intentionally left out of the vector.
// After Fit the width never changes; every transformed row has exactly
// NFeatures columns.
type FeatureEncoder struct {
	model.BaseEstimator

	VendorEncoder   *OneHotEncoder
	RateCodeEncoder *OneHotEncoder
	PaymentEncoder  *OneHotEncoder

	// NFeatures is the fixed feature vector width, set by Fit.
	NFeatures int
}

// NewFeatureEncoder creates an unfitted FeatureEncoder.
func NewFeatureEncoder() *FeatureEncoder {
	return &FeatureEncoder{
		VendorEncoder:   NewOneHotEncoder(),
		RateCodeEncoder: NewOneHotEncoder(),
		PaymentEncoder:  NewOneHotEncoder(),
	}
}

// numScalarFeatures counts the raw numeric columns appended after the one-hot
// blocks: PassengerCount and TripDistance.
const numScalarFeatures = 2

// Fit learns the category sets of the three categorical columns.
func (e *FeatureEncoder) Fit(trips []dataset.Trip) error {
	if len(trips) == 0 {
		return errors.NewModelError("FeatureEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	if err := e.VendorEncoder.Fit(dataset.VendorIDs(trips)); err != nil {
		return err
	}
	if err := e.RateCodeEncoder.Fit(dataset.RateCodes(trips)); err != nil {
		return err
	}
	if err := e.PaymentEncoder.Fit(dataset.PaymentTypes(trips)); err != nil {
		return err
	}

	e.NFeatures = e.VendorEncoder.Width() + e.RateCodeEncoder.Width() +
		e.PaymentEncoder.Width() + numScalarFeatures

	e.SetFitted()
	return nil
}

// TransformOne encodes a single trip into a fresh feature vector.
func (e *FeatureEncoder) TransformOne(trip dataset.Trip) ([]float64, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("FeatureEncoder", "TransformOne")
	}

	features := make([]float64, e.NFeatures)
	offset := 0
	e.VendorEncoder.EncodeTo(features[offset:offset+e.VendorEncoder.Width()], trip.VendorID)
	offset += e.VendorEncoder.Width()
	e.RateCodeEncoder.EncodeTo(features[offset:offset+e.RateCodeEncoder.Width()], trip.RateCode)
	offset += e.RateCodeEncoder.Width()
	e.PaymentEncoder.EncodeTo(features[offset:offset+e.PaymentEncoder.Width()], trip.PaymentType)
	offset += e.PaymentEncoder.Width()
	features[offset] = float64(trip.PassengerCount)
	features[offset+1] = trip.TripDistance

	return features, nil
}

// Transform encodes a slice of trips into a feature matrix of shape
// (len(trips), NFeatures).
func (e *FeatureEncoder) Transform(trips []dataset.Trip) (*mat.Dense, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("FeatureEncoder", "Transform")
	}
	if len(trips) == 0 {
		return nil, errors.NewValueError("FeatureEncoder.Transform", "empty input")
	}

	result := mat.NewDense(len(trips), e.NFeatures, nil)
	for i, trip := range trips {
		row, err := e.TransformOne(trip)
		if err != nil {
			return nil, err
		}
		result.SetRow(i, row)
	}
	return result, nil
}

// FitTransform fits the encoder and transforms the same trips.
func (e *FeatureEncoder) FitTransform(trips []dataset.Trip) (*mat.Dense, error) {
	if err := e.Fit(trips); err != nil {
		return nil, err
	}
	return e.Transform(trips)
}
