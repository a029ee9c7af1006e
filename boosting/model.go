// Package boosting implements gradient-boosted regression trees: a trainer
// that fits an ensemble against squared-error gradients, the immutable Model
// value it produces, and a scikit-learn style Regressor wrapper.
package boosting

import (
	"gonum.org/v1/gonum/mat"

	"github.com/meterlab/farecast/pkg/errors"
)

// Node is a single node in a regression tree. Child indices of -1 mark a leaf.
type Node struct {
	NodeID     int
	ParentID   int // -1 for root
	LeftChild  int
	RightChild int

	// Split information (internal nodes).
	SplitFeature int
	Threshold    float64
	Gain         float64

	// Leaf information.
	LeafValue float64
	LeafCount int
}

// IsLeaf reports whether the node is a leaf.
func (n *Node) IsLeaf() bool {
	return n.LeftChild == -1 && n.RightChild == -1
}

// Tree is one regression tree of the ensemble. Nodes are stored in a flat
// slice indexed by child pointers, root at index 0.
type Tree struct {
	TreeIndex     int
	NumLeaves     int
	ShrinkageRate float64
	Nodes         []Node
}

// Predict walks the tree for a single feature vector and returns the shrunk
// leaf value.
func (t *Tree) Predict(features []float64) float64 {
	nodeID := 0
	for nodeID >= 0 && nodeID < len(t.Nodes) {
		node := &t.Nodes[nodeID]
		if node.IsLeaf() {
			return node.LeafValue * t.ShrinkageRate
		}
		if features[node.SplitFeature] <= node.Threshold {
			nodeID = node.LeftChild
		} else {
			nodeID = node.RightChild
		}
	}
	return 0.0
}

// Model is the fitted gradient-boosting ensemble. It is a plain value: safe
// to share read-only between consumers and never mutated after training.
type Model struct {
	NumIterations int
	LearningRate  float64
	NumLeaves     int
	MaxDepth      int
	Seed          int

	NumFeatures int
	InitScore   float64
	Trees       []Tree
}

// PredictSingle returns the prediction for one feature vector.
func (m *Model) PredictSingle(features []float64) (float64, error) {
	if len(features) != m.NumFeatures {
		return 0, errors.NewDimensionError("Model.PredictSingle", m.NumFeatures, len(features), 1)
	}
	prediction := m.InitScore
	for i := range m.Trees {
		prediction += m.Trees[i].Predict(features)
	}
	return prediction, nil
}

// Predict returns a column of predictions for a batch of samples.
func (m *Model) Predict(X mat.Matrix) (*mat.Dense, error) {
	rows, cols := X.Dims()
	if cols != m.NumFeatures {
		return nil, errors.NewDimensionError("Model.Predict", m.NumFeatures, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)
	features := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(features, i, X)
		pred, err := m.PredictSingle(features)
		if err != nil {
			return nil, err
		}
		predictions.Set(i, 0, pred)
	}
	return predictions, nil
}
