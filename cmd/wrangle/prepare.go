package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/wrangle/acquire"
	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/core/model"
	"github.com/YuminosukeSato/wrangle/internal/config"
	"github.com/YuminosukeSato/wrangle/metrics"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
	"github.com/YuminosukeSato/wrangle/pkg/log"
	"github.com/YuminosukeSato/wrangle/preprocessing"
)

func newPrepareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Clean, split and scale the dataset and write train/validate/test CSVs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recorder := metrics.NewRecorder()
			paths, err := a.prepare(cmd.Context(), recorder)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-10s %s\n", p.name, p.shape, p.path)
			}
			if a.cfg.MetricsTextfile != "" {
				recorder.MarkFinished(time.Now())
				return recorder.WriteTextfile(a.cfg.MetricsTextfile)
			}
			return nil
		},
	}
}

type written struct {
	name  string
	shape frame.Shape
	path  string
}

// cleaningSteps builds the pipeline in the order the clean section lists its
// options. Pruning always runs.
func cleaningSteps(c config.Clean) []model.Step {
	steps := []model.Step{&preprocessing.ColumnDropper{Columns: c.DropColumns}}
	if len(c.Fill) > 0 {
		steps = append(steps, &preprocessing.Imputer{Fills: c.Fill})
	}
	steps = append(steps, preprocessing.NewPruner(c.PropReqCols, c.PropReqRows))
	if c.DropNulls {
		steps = append(steps, preprocessing.NullDropper{})
	}
	if c.DropDuplicates {
		steps = append(steps, preprocessing.Deduplicator{})
	}
	if c.Outliers {
		o := preprocessing.NewOutlierFilter()
		o.Multiplier = c.IQRMultiplier
		steps = append(steps, o)
	}
	return steps
}

func (a *app) prepare(ctx context.Context, recorder *metrics.Recorder) ([]written, error) {
	raw, err := a.acquire(ctx)
	if err != nil {
		return nil, err
	}

	pipeline := preprocessing.NewPipeline(cleaningSteps(a.cfg.Clean),
		preprocessing.WithLogger(a.logger.With(log.ComponentKey, "Pipeline")),
		preprocessing.WithObserver(recorder),
	)
	clean, err := pipeline.Run(ctx, raw)
	if err != nil {
		return nil, err
	}

	split, err := preprocessing.NewSplitter(a.cfg.Split.Seed).Split(ctx, clean)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", a.cfg.OutputDir)
	}

	columns := a.cfg.Scale.Columns
	if len(columns) == 0 {
		columns = clean.NumericNames()
	}
	if len(columns) > 0 {
		start := time.Now()
		scaled, scaler, err := preprocessing.ScaleData(split.Train, split.Validate, split.Test, columns,
			preprocessing.WithStrictRange(a.cfg.Scale.Strict))
		if err != nil {
			return nil, errors.NewStageError(log.StageScale, "fit", err)
		}
		split = scaled
		if err := preprocessing.SaveScaler(filepath.Join(a.cfg.OutputDir, "scaler.gob"), scaler); err != nil {
			return nil, err
		}
		recorder.ObserveStage(log.StageScale, split.Train.Shape(), split.Train.Shape(), time.Since(start))
		a.logger.Info("scaled partitions",
			log.StageKey, log.StageScale,
			log.ColumnsKey, columns,
			"scaler", scaler.Scaler().String(),
		)
	} else {
		a.logger.Warn("no numeric columns to scale", log.StageKey, log.StageScale)
	}

	var out []written
	for _, part := range []struct {
		name string
		f    *frame.Frame
	}{
		{"train", split.Train},
		{"validate", split.Validate},
		{"test", split.Test},
	} {
		path := filepath.Join(a.cfg.OutputDir, part.name+".csv")
		if err := writeCSVFile(path, part.f); err != nil {
			return nil, err
		}
		recorder.ObservePartition(part.name, part.f.NumRows())
		out = append(out, written{name: part.name, shape: part.f.Shape(), path: path})
	}
	return out, nil
}

func writeCSVFile(path string, f *frame.Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := acquire.WriteCSV(file, f); err != nil {
		file.Close()
		return err
	}
	return errors.WithStack(file.Close())
}
