package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/YuminosukeSato/wrangle/pkg/errors"
)

// SaveModel gob-encodes model into filename, replacing the file if it exists.
//
// Example:
//
//	params, _ := scaler.Params()
//	err := model.SaveModel(params, "out/scaler.gob")
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "create %s", filename)
	}
	if err := SaveModelToWriter(model, file); err != nil {
		file.Close()
		return err
	}
	return errors.WithStack(file.Close())
}

// LoadModel decodes a value written by SaveModel into model, which must be a pointer.
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "open %s", filename)
	}
	defer file.Close()
	return LoadModelFromReader(model, file)
}

// SaveModelToWriter gob-encodes model into w.
func SaveModelToWriter(model interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return errors.Wrap(err, "encode model")
	}
	return nil
}

// LoadModelFromReader decodes a gob value from r into model.
func LoadModelFromReader(model interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(model); err != nil {
		return errors.Wrap(err, "decode model")
	}
	return nil
}
