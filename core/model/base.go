// Package model provides the shared estimator plumbing for farecast:
// fitted-state tracking embedded by every trainable type, and gob-based
// persistence for fitted artifacts.
package model

import "github.com/meterlab/farecast/pkg/errors"

// EstimatorState represents the training state of a model.
type EstimatorState int

const (
	// NotFitted is the state before Fit has been called.
	NotFitted EstimatorState = iota
	// Fitted is the state after a successful Fit.
	Fitted
)

// BaseEstimator is embedded by every trainable type to track fitted state.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether the model has been fitted.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the model as fitted.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the model to the not-fitted state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}

// GobEncode serializes the fitted state. Without it gob refuses the embedded
// struct, since it carries no exported fields.
func (e BaseEstimator) GobEncode() ([]byte, error) {
	return []byte{byte(e.state)}, nil
}

// GobDecode restores the fitted state written by GobEncode.
func (e *BaseEstimator) GobDecode(data []byte) error {
	if len(data) != 1 {
		return errors.Newf("farecast: malformed estimator state: %d bytes", len(data))
	}
	e.state = EstimatorState(data[0])
	return nil
}
