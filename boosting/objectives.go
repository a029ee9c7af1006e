package boosting

// Objective defines the per-sample loss derivatives that drive boosting.
type Objective interface {
	// Gradient calculates the gradient for a single sample.
	Gradient(prediction, target float64) float64

	// Hessian calculates the hessian for a single sample.
	Hessian(prediction, target float64) float64

	// Loss calculates the loss for a single sample.
	Loss(prediction, target float64) float64

	// InitScore returns the baseline prediction for this objective.
	InitScore(targets []float64) float64

	// Name returns the name of the objective.
	Name() string
}

// LeastSquares implements squared-error (L2) regression loss.
type LeastSquares struct{}

// NewLeastSquares creates the L2 objective.
func NewLeastSquares() *LeastSquares {
	return &LeastSquares{}
}

func (o *LeastSquares) Gradient(prediction, target float64) float64 {
	return prediction - target
}

func (o *LeastSquares) Hessian(prediction, target float64) float64 {
	return 1.0
}

func (o *LeastSquares) Loss(prediction, target float64) float64 {
	diff := prediction - target
	return 0.5 * diff * diff
}

// InitScore returns the mean target, the optimal constant under L2 loss.
func (o *LeastSquares) InitScore(targets []float64) float64 {
	if len(targets) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, t := range targets {
		sum += t
	}
	return sum / float64(len(targets))
}

func (o *LeastSquares) Name() string {
	return "regression"
}
