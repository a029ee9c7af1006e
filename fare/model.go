// Package fare ties the feature encoder and the boosting regressor together
// into the fare prediction model: train once, then share the fitted value
// read-only between evaluation and batch prediction.
package fare

import (
	"time"

	"github.com/meterlab/farecast/boosting"
	coremodel "github.com/meterlab/farecast/core/model"
	"github.com/meterlab/farecast/dataset"
	"github.com/meterlab/farecast/pkg/errors"
	"github.com/meterlab/farecast/pkg/log"
	"github.com/meterlab/farecast/preprocessing"
)

// Params are the training hyperparameters for a fare model.
type Params struct {
	NumIterations int
	LearningRate  float64
	NumLeaves     int
	MaxDepth      int
	MinDataInLeaf int
	Lambda        float64
	Seed          int
}

// DefaultParams returns the parameters used by the stock pipeline.
func DefaultParams() Params {
	return Params{
		NumIterations: 100,
		LearningRate:  0.1,
		NumLeaves:     31,
		MaxDepth:      6,
		MinDataInLeaf: 5,
		Lambda:        1.0,
		Seed:          42,
	}
}

// Model is the fitted fare predictor. It is immutable after Train and safe
// to share between the evaluator and any number of batch prediction passes.
type Model struct {
	Encoder   *preprocessing.FeatureEncoder
	Regressor *boosting.Regressor
}

// Train fits the one-hot feature pipeline and the boosting ensemble against
// the given trips. An empty training set is a fatal error; a degenerate model
// is never produced silently.
func Train(params Params, trips []dataset.Trip) (*Model, error) {
	if len(trips) == 0 {
		return nil, errors.NewModelError("fare.Train", "empty training set", errors.ErrEmptyData)
	}

	logger := log.GetLoggerWithName("fare")
	start := time.Now()

	encoder := preprocessing.NewFeatureEncoder()
	X, err := encoder.FitTransform(trips)
	if err != nil {
		return nil, errors.Wrap(err, "feature encoding failed")
	}

	regressor := boosting.NewRegressor().
		WithNumIterations(params.NumIterations).
		WithLearningRate(params.LearningRate).
		WithMaxDepth(params.MaxDepth).
		WithMinDataInLeaf(params.MinDataInLeaf).
		WithSeed(params.Seed)
	regressor.NumLeaves = params.NumLeaves
	regressor.Lambda = params.Lambda

	if err := regressor.Fit(X, dataset.Labels(trips)); err != nil {
		return nil, err
	}

	logger.Info("model trained",
		log.OperationKey, "fit",
		log.SamplesKey, len(trips),
		log.FeaturesKey, encoder.NFeatures,
		log.TreesKey, len(regressor.Model.Trees),
		log.DurationMsKey, time.Since(start).Milliseconds())

	return &Model{Encoder: encoder, Regressor: regressor}, nil
}

// Predict returns the fare estimate for a single trip. The model is not
// mutated; prediction is a pure function of (model, record).
func Predict(m *Model, trip dataset.Trip) (float64, error) {
	features, err := m.Encoder.TransformOne(trip)
	if err != nil {
		return 0, err
	}
	return m.Regressor.PredictOne(features)
}

// PredictAll maps Predict over trips, returning one augmented copy per input
// row in input order. Source records are left untouched.
func PredictAll(m *Model, trips []dataset.Trip) ([]dataset.PredictedTrip, error) {
	predictions := make([]dataset.PredictedTrip, 0, len(trips))
	for _, trip := range trips {
		estimate, err := Predict(m, trip)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, dataset.PredictedTrip{
			Trip:                trip,
			PredictedFareAmount: estimate,
		})
	}
	return predictions, nil
}

// PredictFile loads records fresh from dataPath, predicts row by row, and
// writes the augmented rows to outPath, overwriting any existing file.
func PredictFile(m *Model, dataPath, outPath string) error {
	trips, err := dataset.Load(dataPath)
	if err != nil {
		return err
	}

	predictions, err := PredictAll(m, trips)
	if err != nil {
		return err
	}

	if err := dataset.WritePredictions(outPath, predictions); err != nil {
		return err
	}

	log.GetLoggerWithName("fare").Info("predictions written",
		log.OperationKey, "write",
		log.SamplesKey, len(predictions),
		log.PathKey, outPath)
	return nil
}

// Save writes the fitted model to path as a gob artifact.
func Save(m *Model, path string) error {
	return coremodel.SaveModel(m, path)
}

// Load reads a model written by Save. The returned model is fitted and ready
// to predict.
func Load(path string) (*Model, error) {
	var m Model
	if err := coremodel.LoadModel(&m, path); err != nil {
		return nil, err
	}
	if m.Encoder == nil || m.Regressor == nil || m.Regressor.Model == nil {
		return nil, errors.NewModelError("fare.Load", "incomplete model artifact", nil)
	}
	return &m, nil
}
