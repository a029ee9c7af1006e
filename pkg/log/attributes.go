// This file defines standard attribute keys for farecast pipeline logging.
// Using these keys keeps log output consistent across packages and enables
// structured filtering (e.g. all records for one pipeline phase).

package log

// Model and operation context.
const (
	// ModelNameKey identifies the model or transformer type.
	// Examples: "Regressor", "FeatureEncoder", "OneHotEncoder"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "evaluate", "write"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "boosting.trainer", "dataset.loader", "evaluation"
	ComponentKey = "ml.component"

	// PhaseKey indicates the pipeline phase.
	// Examples: "training", "evaluation", "inference"
	PhaseKey = "ml.phase"
)

// Data shape and characteristics.
const (
	// SamplesKey indicates the number of rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the feature vector width.
	FeaturesKey = "data.features"

	// PathKey names the file a loader or writer is operating on.
	PathKey = "data.path"
)

// Performance and quality metrics.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// RSquaredKey records the coefficient of determination of an evaluation.
	RSquaredKey = "metric.r_squared"

	// RMSEKey records the root mean squared error of an evaluation.
	RMSEKey = "metric.rmse"

	// TreesKey records the number of trees in a fitted ensemble.
	TreesKey = "model.trees"
)
