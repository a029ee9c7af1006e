// Package config loads the farecast run configuration from the environment.
// A .env file in the working directory is honored when present; every value
// has a default so a checkout with the stock Data directory runs unchanged.
package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all paths and hyperparameters for one farecast run.
// It is built once by the orchestrator and passed down explicitly; no package
// reads it from ambient state.
type Config struct {
	// Input data, relative to the working directory.
	TrainDataPath string
	TestDataPath  string

	// Fitted-model artifact written after training.
	ModelPath string

	// Per-row prediction outputs, written to the working directory.
	TrainOutputPath string
	TestOutputPath  string

	// Optional predicted-vs-actual scatter plot. Empty disables plotting.
	PlotPath string

	// Trainer hyperparameters.
	NumIterations int
	LearningRate  float64
	NumLeaves     int
	MaxDepth      int
	MinDataInLeaf int
	Lambda        float64
	Seed          int

	LogLevel string
}

// Load reads the .env file (if any) and returns a populated Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, falling back to system env vars")
	}

	return &Config{
		TrainDataPath: getEnv("FARECAST_TRAIN_DATA", "Data/taxi-fare-train.csv"),
		TestDataPath:  getEnv("FARECAST_TEST_DATA", "Data/taxi-fare-test.csv"),
		ModelPath:     getEnv("FARECAST_MODEL_PATH", "Data/Model.gob"),

		TrainOutputPath: getEnv("FARECAST_TRAIN_OUTPUT", "train_predicted.csv"),
		TestOutputPath:  getEnv("FARECAST_TEST_OUTPUT", "test_predicted.csv"),
		PlotPath:        getEnv("FARECAST_PLOT_PATH", ""),

		NumIterations: getEnvInt("FARECAST_NUM_ITERATIONS", 100),
		LearningRate:  getEnvFloat("FARECAST_LEARNING_RATE", 0.1),
		NumLeaves:     getEnvInt("FARECAST_NUM_LEAVES", 31),
		MaxDepth:      getEnvInt("FARECAST_MAX_DEPTH", 6),
		MinDataInLeaf: getEnvInt("FARECAST_MIN_DATA_IN_LEAF", 5),
		Lambda:        getEnvFloat("FARECAST_LAMBDA", 1.0),
		Seed:          getEnvInt("FARECAST_SEED", 42),

		LogLevel: getEnv("FARECAST_LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("invalid float in environment, using default", "key", key, "value", v)
		return fallback
	}
	return f
}
