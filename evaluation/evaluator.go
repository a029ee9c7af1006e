// Package evaluation scores a fitted fare model against a held-out set of
// trips and renders the resulting quality report.
package evaluation

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/meterlab/farecast/dataset"
	"github.com/meterlab/farecast/fare"
	"github.com/meterlab/farecast/metrics"
	"github.com/meterlab/farecast/pkg/errors"
	"github.com/meterlab/farecast/pkg/log"
)

// Report holds the regression quality metrics for one evaluation pass.
type Report struct {
	RSquared float64
	RMSE     float64
	Rows     int
}

// Evaluate predicts every trip in the test set and computes R-squared and
// RMSE against the observed fares. Neither the model nor the trips are
// mutated. An empty test set is an error.
func Evaluate(m *fare.Model, trips []dataset.Trip) (*Report, error) {
	if len(trips) == 0 {
		return nil, errors.NewModelError("evaluation.Evaluate", "empty test set", errors.ErrEmptyData)
	}

	predicted := mat.NewVecDense(len(trips), nil)
	for i, trip := range trips {
		estimate, err := fare.Predict(m, trip)
		if err != nil {
			return nil, err
		}
		predicted.SetVec(i, estimate)
	}
	actual := dataset.Labels(trips)

	r2, err := metrics.R2Score(actual, predicted)
	if err != nil {
		return nil, err
	}
	rmse, err := metrics.RMSE(actual, predicted)
	if err != nil {
		return nil, err
	}

	log.GetLoggerWithName("evaluation").Info("model evaluated",
		log.OperationKey, "evaluate",
		log.SamplesKey, len(trips),
		log.RSquaredKey, r2,
		log.RMSEKey, rmse)

	return &Report{RSquared: r2, RMSE: rmse, Rows: len(trips)}, nil
}

// String renders the report as the console banner printed after evaluation.
func (r *Report) String() string {
	var b strings.Builder
	rule := strings.Repeat("*", 48)
	b.WriteString(rule + "\n")
	b.WriteString("*       Model quality metrics evaluation\n")
	b.WriteString("*-----------------------------------------------\n")
	fmt.Fprintf(&b, "*       RSquared Score:           %.2f\n", r.RSquared)
	fmt.Fprintf(&b, "*       Root Mean Squared Error:  %.2f\n", r.RMSE)
	b.WriteString(rule)
	return b.String()
}
