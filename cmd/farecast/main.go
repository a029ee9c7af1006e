// Command farecast trains a gradient-boosted fare model on historical taxi
// trips, evaluates it against a held-out set, and writes per-row predictions
// for both sets.
package main

import (
	"fmt"
	"os"

	"github.com/meterlab/farecast/config"
	"github.com/meterlab/farecast/dataset"
	"github.com/meterlab/farecast/evaluation"
	"github.com/meterlab/farecast/fare"
	"github.com/meterlab/farecast/pkg/log"
)

func main() {
	cfg := config.Load()
	log.SetupLogger(cfg.LogLevel)

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "farecast: %v\n", err)
		os.Exit(1)
	}
}

// run executes the pipeline strictly in order; the first failing stage aborts
// the rest.
func run(cfg *config.Config) error {
	logger := log.GetLoggerWithName("farecast")

	trainTrips, err := dataset.Load(cfg.TrainDataPath)
	if err != nil {
		return err
	}
	logger.Info("training data loaded",
		log.PathKey, cfg.TrainDataPath,
		log.SamplesKey, len(trainTrips))

	model, err := fare.Train(paramsFrom(cfg), trainTrips)
	if err != nil {
		return err
	}

	testTrips, err := dataset.Load(cfg.TestDataPath)
	if err != nil {
		return err
	}

	report, err := evaluation.Evaluate(model, testTrips)
	if err != nil {
		return err
	}
	fmt.Println(report)

	if cfg.PlotPath != "" {
		if err := evaluation.SavePredictionPlot(model, testTrips, cfg.PlotPath); err != nil {
			return err
		}
		logger.Info("prediction plot written", log.PathKey, cfg.PlotPath)
	}

	if err := fare.Save(model, cfg.ModelPath); err != nil {
		return err
	}
	logger.Info("model saved", log.PathKey, cfg.ModelPath)

	if err := fare.PredictFile(model, cfg.TrainDataPath, cfg.TrainOutputPath); err != nil {
		return err
	}
	if err := fare.PredictFile(model, cfg.TestDataPath, cfg.TestOutputPath); err != nil {
		return err
	}

	fmt.Println("Predictions written to", cfg.TrainOutputPath, "and", cfg.TestOutputPath)
	return nil
}

func paramsFrom(cfg *config.Config) fare.Params {
	return fare.Params{
		NumIterations: cfg.NumIterations,
		LearningRate:  cfg.LearningRate,
		NumLeaves:     cfg.NumLeaves,
		MaxDepth:      cfg.MaxDepth,
		MinDataInLeaf: cfg.MinDataInLeaf,
		Lambda:        cfg.Lambda,
		Seed:          cfg.Seed,
	}
}
