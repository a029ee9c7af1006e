package boosting

import (
	"gonum.org/v1/gonum/mat"

	"github.com/meterlab/farecast/core/model"
	"github.com/meterlab/farecast/metrics"
	"github.com/meterlab/farecast/pkg/errors"
	"github.com/meterlab/farecast/pkg/log"
)

// Regressor wraps the trainer behind a scikit-learn style Fit/Predict/Score
// surface with defaults suitable for small tabular datasets.
type Regressor struct {
	model.BaseEstimator

	// Model is the fitted ensemble, nil until Fit succeeds.
	Model *Model

	// Hyperparameters.
	NumIterations int
	LearningRate  float64
	NumLeaves     int
	MaxDepth      int
	MinDataInLeaf int
	Lambda        float64
	Seed          int
}

// NewRegressor creates a regressor with default parameters.
func NewRegressor() *Regressor {
	return &Regressor{
		NumIterations: 100,
		LearningRate:  0.1,
		NumLeaves:     31,
		MaxDepth:      6,
		MinDataInLeaf: 20,
		Lambda:        1.0,
		Seed:          42,
	}
}

// WithNumIterations sets the number of boosting iterations.
func (r *Regressor) WithNumIterations(n int) *Regressor {
	r.NumIterations = n
	return r
}

// WithLearningRate sets the boosting learning rate.
func (r *Regressor) WithLearningRate(lr float64) *Regressor {
	r.LearningRate = lr
	return r
}

// WithMaxDepth sets the maximum tree depth.
func (r *Regressor) WithMaxDepth(d int) *Regressor {
	r.MaxDepth = d
	return r
}

// WithMinDataInLeaf sets the minimum samples per leaf.
func (r *Regressor) WithMinDataInLeaf(n int) *Regressor {
	r.MinDataInLeaf = n
	return r
}

// WithSeed sets the random seed.
func (r *Regressor) WithSeed(seed int) *Regressor {
	r.Seed = seed
	return r
}

// Fit trains the ensemble on (X, y).
func (r *Regressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "Regressor.Fit")

	rows, cols := X.Dims()
	logger := log.GetLoggerWithName("boosting.regressor")
	logger.Debug("fitting regressor",
		log.SamplesKey, rows,
		log.FeaturesKey, cols)

	trainer := NewTrainer(TrainingParams{
		NumIterations: r.NumIterations,
		LearningRate:  r.LearningRate,
		NumLeaves:     r.NumLeaves,
		MaxDepth:      r.MaxDepth,
		MinDataInLeaf: r.MinDataInLeaf,
		Lambda:        r.Lambda,
		Seed:          r.Seed,
	})
	if err := trainer.Fit(X, y); err != nil {
		return errors.Wrap(err, "training failed")
	}

	r.Model = trainer.GetModel()
	r.SetFitted()
	return nil
}

// Predict returns a single-column matrix of predictions.
func (r *Regressor) Predict(X mat.Matrix) (*mat.Dense, error) {
	if !r.IsFitted() {
		return nil, errors.NewNotFittedError("Regressor", "Predict")
	}
	return r.Model.Predict(X)
}

// PredictOne returns the prediction for a single feature vector.
func (r *Regressor) PredictOne(features []float64) (float64, error) {
	if !r.IsFitted() {
		return 0, errors.NewNotFittedError("Regressor", "PredictOne")
	}
	return r.Model.PredictSingle(features)
}

// Score returns the coefficient of determination R² on (X, y).
func (r *Regressor) Score(X, y mat.Matrix) (float64, error) {
	if !r.IsFitted() {
		return 0, errors.NewNotFittedError("Regressor", "Score")
	}

	predictions, err := r.Predict(X)
	if err != nil {
		return 0, err
	}

	rows, _ := y.Dims()
	yVec := mat.NewVecDense(rows, nil)
	predVec := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		yVec.SetVec(i, y.At(i, 0))
		predVec.SetVec(i, predictions.At(i, 0))
	}
	return metrics.R2Score(yVec, predVec)
}
