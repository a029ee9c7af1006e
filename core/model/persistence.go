package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/meterlab/farecast/pkg/errors"
)

// SaveModel writes a fitted model to a file with encoding/gob.
// The file is created or truncated. No compatibility is guaranteed for the
// on-disk format beyond "a trained-model artifact exists on disk".
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create model file %q", filename)
	}
	defer file.Close()

	if err := SaveModelToWriter(model, file); err != nil {
		return errors.Wrapf(err, "failed to save model to %q", filename)
	}
	return nil
}

// LoadModel reads a model previously written by SaveModel into model, which
// must be a pointer to the same concrete type.
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open model file %q", filename)
	}
	defer file.Close()

	if err := LoadModelFromReader(model, file); err != nil {
		return errors.Wrapf(err, "failed to load model from %q", filename)
	}
	return nil
}

// SaveModelToWriter encodes a model to an arbitrary writer.
func SaveModelToWriter(model interface{}, w io.Writer) error {
	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(model); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader decodes a model from an arbitrary reader.
func LoadModelFromReader(model interface{}, r io.Reader) error {
	decoder := gob.NewDecoder(r)
	if err := decoder.Decode(model); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
