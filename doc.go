// Package wrangle prepares tabular datasets for modelling: it acquires a table
// from SQL (caching it as CSV), reports on its shape and missing values, prunes
// sparse columns and rows, filters IQR outliers, splits the rows into
// train/validate/test partitions and min-max scales them using statistics from
// the training partition only.
//
// # Installation
//
//	go install github.com/YuminosukeSato/wrangle/cmd/wrangle@latest
//
// # Quick Start
//
// As a library:
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//	    "os"
//
//	    "github.com/YuminosukeSato/wrangle/acquire"
//	    "github.com/YuminosukeSato/wrangle/preprocessing"
//	)
//
//	func main() {
//	    ctx := context.Background()
//	    f, err := acquire.CSVSource{Path: "patients.csv"}.Fetch(ctx)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Keep columns with at least 50% and rows with at least 75% of values present
//	    f, err = preprocessing.HandleMissing(f, 0.5, 0.75)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    f, err = preprocessing.FilterOutliers(f)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    split, err := preprocessing.TrainValidateTest(f, preprocessing.DefaultSeed)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    scaled, _, err := preprocessing.ScaleData(split.Train, split.Validate, split.Test, f.NumericNames())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    acquire.WriteCSV(os.Stdout, scaled.Train)
//	}
//
// From the command line:
//
//	wrangle summarize --input patients.csv
//	wrangle prepare --config wrangle.yaml
//
// # Packages
//
//   - core/frame: immutable column-oriented table with row labels
//   - acquire: SQL source (gorm), CSV codec (gota), file and redis caches
//   - preprocessing: missing-value reports, pruning, outliers, split, MinMaxScaler, pipeline
//   - report: describe statistics, value counts and the printed summary
//   - metrics: prometheus stage metrics with textfile export
//   - internal/config: viper configuration
//   - pkg/errors, pkg/log: error types and structured logging
//
// # Reproducibility
//
// Splits are deterministic for a given seed and row order. The same seed is used
// for both the test and the validate cut, as is the scaler's training-only fit.
//
// # License
//
// wrangle is released under the MIT License.
package wrangle
