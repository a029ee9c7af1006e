// Package preprocessing implements the feature transforms that turn raw trip
// records into the fixed-width numeric vectors fed to the trainer.
package preprocessing

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/meterlab/farecast/core/model"
	"github.com/meterlab/farecast/pkg/errors"
)

// OneHotEncoder maps each distinct categorical token seen during Fit to a
// fixed-position binary indicator vector.
//
// Category positions are assigned in lexicographic order, so the encoding is
// independent of row order in the training file. A token not seen during Fit
// encodes to the all-zero vector; there is no dedicated unknown bucket. This
// keeps the feature width fixed by the training data alone, at the cost of
// unseen categories carrying no signal at inference time.
type OneHotEncoder struct {
	model.BaseEstimator

	// Categories holds the known tokens in encoding order.
	Categories []string

	// Index maps a token to its position in Categories.
	Index map[string]int
}

// NewOneHotEncoder creates an unfitted OneHotEncoder.
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{}
}

// Fit learns the category set from a column of tokens.
func (e *OneHotEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}

	e.Categories = make([]string, 0, len(seen))
	for v := range seen {
		e.Categories = append(e.Categories, v)
	}
	sort.Strings(e.Categories)

	e.Index = make(map[string]int, len(e.Categories))
	for i, v := range e.Categories {
		e.Index[v] = i
	}

	e.SetFitted()
	return nil
}

// Width returns the indicator vector width (the number of known categories).
func (e *OneHotEncoder) Width() int {
	return len(e.Categories)
}

// EncodeTo writes the indicator block for value into dst, which must have
// length Width(). Unknown values leave the block all zero.
func (e *OneHotEncoder) EncodeTo(dst []float64, value string) {
	for i := range dst {
		dst[i] = 0
	}
	if i, ok := e.Index[value]; ok {
		dst[i] = 1
	}
}

// Transform encodes a column of tokens into an indicator matrix of shape
// (len(values), Width()).
func (e *OneHotEncoder) Transform(values []string) (*mat.Dense, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	if len(values) == 0 {
		return nil, errors.NewValueError("OneHotEncoder.Transform", "empty input")
	}

	result := mat.NewDense(len(values), e.Width(), nil)
	row := make([]float64, e.Width())
	for i, v := range values {
		e.EncodeTo(row, v)
		result.SetRow(i, row)
	}
	return result, nil
}

// FitTransform fits the encoder and transforms the same column.
func (e *OneHotEncoder) FitTransform(values []string) (*mat.Dense, error) {
	if err := e.Fit(values); err != nil {
		return nil, err
	}
	return e.Transform(values)
}

// String returns a textual representation of the encoder.
func (e *OneHotEncoder) String() string {
	if !e.IsFitted() {
		return "OneHotEncoder()"
	}
	return fmt.Sprintf("OneHotEncoder(n_categories=%d)", len(e.Categories))
}
