package boosting

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/meterlab/farecast/pkg/errors"
	"github.com/meterlab/farecast/pkg/log"
)

// TrainingParams contains the training hyperparameters.
type TrainingParams struct {
	NumIterations int     `json:"num_iterations"`
	LearningRate  float64 `json:"learning_rate"`
	NumLeaves     int     `json:"num_leaves"`
	MaxDepth      int     `json:"max_depth"`
	MinDataInLeaf int     `json:"min_data_in_leaf"`

	// Regularization.
	Lambda         float64 `json:"lambda_l2"`
	MinGainToSplit float64 `json:"min_gain_to_split"`

	// Row sampling. 1.0 disables bagging.
	BaggingFraction float64 `json:"bagging_fraction"`

	// Seed drives all stochastic behavior, so two runs with the same data
	// and parameters build identical ensembles.
	Seed int `json:"seed"`
}

// validate rejects parameter values the trainer cannot act on. Zero values
// never reach here; NewTrainer replaces them with defaults first.
func (p *TrainingParams) validate() error {
	if p.NumIterations < 0 {
		return errors.NewValidationError("num_iterations", "must be non-negative", p.NumIterations)
	}
	if p.LearningRate < 0 {
		return errors.NewValidationError("learning_rate", "must be non-negative", p.LearningRate)
	}
	if p.NumLeaves < 2 {
		return errors.NewValidationError("num_leaves", "must be at least 2", p.NumLeaves)
	}
	if p.MinDataInLeaf < 1 {
		return errors.NewValidationError("min_data_in_leaf", "must be at least 1", p.MinDataInLeaf)
	}
	if p.Lambda < 0 {
		return errors.NewValidationError("lambda_l2", "must be non-negative", p.Lambda)
	}
	if p.BaggingFraction <= 0 || p.BaggingFraction > 1 {
		return errors.NewValidationError("bagging_fraction", "must be in (0, 1]", p.BaggingFraction)
	}
	return nil
}

// SplitInfo describes a candidate split during tree construction.
type SplitInfo struct {
	Feature    int
	Threshold  float64
	Gain       float64
	LeftCount  int
	RightCount int
}

// Trainer builds a gradient-boosted tree ensemble one tree at a time, each
// tree fit against the gradients of the current ensemble's predictions.
type Trainer struct {
	params TrainingParams

	X *mat.Dense
	y []float64

	gradients   []float64
	hessians    []float64
	predictions []float64 // current ensemble output per sample

	trees     []Tree
	objective Objective
	initScore float64
	iteration int
	rng       *rand.Rand
}

// NewTrainer creates a trainer, applying defaults for unset parameters.
func NewTrainer(params TrainingParams) *Trainer {
	if params.NumIterations == 0 {
		params.NumIterations = 100
	}
	if params.LearningRate == 0 {
		params.LearningRate = 0.1
	}
	if params.NumLeaves == 0 {
		params.NumLeaves = 31
	}
	if params.MinDataInLeaf == 0 {
		params.MinDataInLeaf = 20
	}
	if params.BaggingFraction == 0 {
		params.BaggingFraction = 1.0
	}
	if params.MinGainToSplit == 0 {
		params.MinGainToSplit = 1e-7
	}

	return &Trainer{
		params:    params,
		objective: NewLeastSquares(),
		rng:       rand.New(rand.NewSource(int64(params.Seed))),
	}
}

// Fit trains the ensemble on (X, y). y must be a single-column matrix with
// one row per sample. An empty training set is an error.
func (t *Trainer) Fit(X, y mat.Matrix) error {
	if err := t.params.validate(); err != nil {
		return err
	}

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()

	if rows == 0 || cols == 0 {
		return errors.NewModelError("Trainer.Fit", "empty training set", errors.ErrEmptyData)
	}
	if yRows != rows {
		return errors.NewDimensionError("Trainer.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("Trainer.Fit", 1, yCols, 1)
	}

	t.X = mat.DenseCopyOf(X)
	t.y = make([]float64, rows)
	for i := 0; i < rows; i++ {
		t.y[i] = y.At(i, 0)
	}

	t.gradients = make([]float64, rows)
	t.hessians = make([]float64, rows)
	t.initScore = t.objective.InitScore(t.y)

	t.predictions = make([]float64, rows)
	for i := range t.predictions {
		t.predictions[i] = t.initScore
	}

	logger := log.GetLoggerWithName("boosting.trainer")
	for iter := 0; iter < t.params.NumIterations; iter++ {
		t.iteration = iter
		t.calculateGradients()

		tree := t.buildTree(t.sampleRows())
		t.trees = append(t.trees, tree)
		t.updatePredictions(tree)

		if iter%10 == 0 {
			logger.Debug("training progress",
				"iteration", iter,
				"loss", t.currentLoss())
		}
	}

	return nil
}

// GetModel returns the trained ensemble.
func (t *Trainer) GetModel() *Model {
	_, cols := t.X.Dims()
	return &Model{
		NumIterations: len(t.trees),
		LearningRate:  t.params.LearningRate,
		NumLeaves:     t.params.NumLeaves,
		MaxDepth:      t.params.MaxDepth,
		Seed:          t.params.Seed,
		NumFeatures:   cols,
		InitScore:     t.initScore,
		Trees:         t.trees,
	}
}

// calculateGradients refreshes gradients and hessians from the current
// ensemble predictions.
func (t *Trainer) calculateGradients() {
	for i := range t.y {
		t.gradients[i] = t.objective.Gradient(t.predictions[i], t.y[i])
		t.hessians[i] = t.objective.Hessian(t.predictions[i], t.y[i])
	}
}

// sampleRows draws the row subset for the next tree. With a bagging fraction
// of 1.0 every row participates and the draw consumes no randomness.
func (t *Trainer) sampleRows() []int {
	rows, _ := t.X.Dims()
	if t.params.BaggingFraction >= 1.0 {
		indices := make([]int, rows)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	k := int(float64(rows) * t.params.BaggingFraction)
	if k < 1 {
		k = 1
	}
	perm := t.rng.Perm(rows)[:k]
	sort.Ints(perm)
	return perm
}

// buildTree constructs one tree against the current gradients.
func (t *Trainer) buildTree(indices []int) Tree {
	tree := Tree{
		TreeIndex:     t.iteration,
		ShrinkageRate: t.params.LearningRate,
		Nodes:         []Node{},
	}
	t.buildNode(&tree, indices, -1, 0)
	tree.NumLeaves = countLeaves(&tree)
	return tree
}

// buildNode recursively grows tree nodes and returns the new node's index.
func (t *Trainer) buildNode(tree *Tree, indices []int, parentID, depth int) int {
	nodeID := len(tree.Nodes)

	if t.shouldStop(tree, indices, depth) {
		tree.Nodes = append(tree.Nodes, Node{
			NodeID:     nodeID,
			ParentID:   parentID,
			LeftChild:  -1,
			RightChild: -1,
			LeafValue:  t.leafValue(indices),
			LeafCount:  len(indices),
		})
		return nodeID
	}

	best := t.findBestSplit(indices)
	if best.Gain < t.params.MinGainToSplit {
		tree.Nodes = append(tree.Nodes, Node{
			NodeID:     nodeID,
			ParentID:   parentID,
			LeftChild:  -1,
			RightChild: -1,
			LeafValue:  t.leafValue(indices),
			LeafCount:  len(indices),
		})
		return nodeID
	}

	tree.Nodes = append(tree.Nodes, Node{
		NodeID:       nodeID,
		ParentID:     parentID,
		SplitFeature: best.Feature,
		Threshold:    best.Threshold,
		Gain:         best.Gain,
	})

	var left, right []int
	for _, idx := range indices {
		if t.X.At(idx, best.Feature) <= best.Threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	leftChild := t.buildNode(tree, left, nodeID, depth+1)
	rightChild := t.buildNode(tree, right, nodeID, depth+1)
	tree.Nodes[nodeID].LeftChild = leftChild
	tree.Nodes[nodeID].RightChild = rightChild

	return nodeID
}

func (t *Trainer) shouldStop(tree *Tree, indices []int, depth int) bool {
	if t.params.MaxDepth > 0 && depth >= t.params.MaxDepth {
		return true
	}
	if len(indices) < 2*t.params.MinDataInLeaf {
		return true
	}
	if t.params.NumLeaves > 0 && countLeaves(tree)+1 >= t.params.NumLeaves {
		return true
	}
	return false
}

// findBestSplit scans every feature for the split with the highest gain.
func (t *Trainer) findBestSplit(indices []int) SplitInfo {
	_, cols := t.X.Dims()
	best := SplitInfo{Gain: -math.MaxFloat64}
	for j := 0; j < cols; j++ {
		if split := t.findBestSplitForFeature(indices, j); split.Gain > best.Gain {
			best = split
		}
	}
	return best
}

// findBestSplitForFeature evaluates every distinct threshold of one feature.
func (t *Trainer) findBestSplitForFeature(indices []int, feature int) SplitInfo {
	type valueIdx struct {
		value float64
		idx   int
	}
	values := make([]valueIdx, len(indices))
	for i, idx := range indices {
		values[i] = valueIdx{value: t.X.At(idx, feature), idx: idx}
	}
	sort.Slice(values, func(a, b int) bool {
		return values[a].value < values[b].value
	})

	var totalGrad, totalHess float64
	for _, idx := range indices {
		totalGrad += t.gradients[idx]
		totalHess += t.hessians[idx]
	}

	best := SplitInfo{Feature: feature, Gain: -math.MaxFloat64}
	var leftGrad, leftHess float64
	leftCount := 0

	for i := 0; i < len(values)-1; i++ {
		idx := values[i].idx
		leftGrad += t.gradients[idx]
		leftHess += t.hessians[idx]
		leftCount++

		// A threshold only exists between distinct values.
		if values[i].value == values[i+1].value {
			continue
		}

		rightCount := len(indices) - leftCount
		if leftCount < t.params.MinDataInLeaf || rightCount < t.params.MinDataInLeaf {
			continue
		}

		gain := t.splitGain(leftGrad, leftHess, totalGrad-leftGrad, totalHess-leftHess, totalGrad, totalHess)
		if gain > best.Gain {
			best.Gain = gain
			best.Threshold = (values[i].value + values[i+1].value) / 2
			best.LeftCount = leftCount
			best.RightCount = rightCount
		}
	}

	return best
}

// splitGain is the standard second-order gain with L2 regularization.
func (t *Trainer) splitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess float64) float64 {
	lambda := t.params.Lambda

	leftScore := (leftGrad * leftGrad) / (leftHess + lambda)
	rightScore := (rightGrad * rightGrad) / (rightHess + lambda)
	totalScore := (totalGrad * totalGrad) / (totalHess + lambda)

	return 0.5 * (leftScore + rightScore - totalScore)
}

// leafValue is the optimal leaf output -G/(H+lambda).
func (t *Trainer) leafValue(indices []int) float64 {
	var sumGrad, sumHess float64
	for _, idx := range indices {
		sumGrad += t.gradients[idx]
		sumHess += t.hessians[idx]
	}

	const epsilon = 1e-10
	if math.Abs(sumHess) < epsilon {
		sumHess = epsilon
	}
	return -sumGrad / (sumHess + t.params.Lambda)
}

// updatePredictions folds the new tree into the cached ensemble output.
func (t *Trainer) updatePredictions(tree Tree) {
	rows, cols := t.X.Dims()
	features := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(features, i, t.X)
		t.predictions[i] += tree.Predict(features)
	}
}

func (t *Trainer) currentLoss() float64 {
	var loss float64
	for i := range t.y {
		loss += t.objective.Loss(t.predictions[i], t.y[i])
	}
	return loss / float64(len(t.y))
}

func countLeaves(tree *Tree) int {
	count := 0
	for i := range tree.Nodes {
		if tree.Nodes[i].IsLeaf() {
			count++
		}
	}
	return count
}
