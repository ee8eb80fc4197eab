package preprocessing

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
	"github.com/YuminosukeSato/wrangle/pkg/log"
)

const (
	// DefaultTestSize is the share of all rows held out for test.
	DefaultTestSize = 0.2
	// DefaultValidateSize is the share of the remaining rows held out for validation,
	// which makes validate 20% of the original.
	DefaultValidateSize = 0.25
	// DefaultSeed matches the seed of the reference workflow.
	DefaultSeed int64 = 123
)

// Split is a row-disjoint train/validate/test partition. Row labels are those of
// the source frame.
type Split struct {
	Train    *frame.Frame
	Validate *frame.Frame
	Test     *frame.Frame
}

// Shapes returns the shapes of the three subsets.
func (s Split) Shapes() (train, validate, test frame.Shape) {
	return s.Train.Shape(), s.Validate.Shape(), s.Test.Shape()
}

// TrainTestSplit shuffles the rows with a PCG generator seeded with seed and holds
// out the first ceil(testSize*n) shuffled rows as test. Both subsets keep the
// shuffled order. The same frame and seed always give the same subsets.
func TrainTestSplit(f *frame.Frame, testSize float64, seed int64) (train, test *frame.Frame, err error) {
	if math.IsNaN(testSize) || testSize <= 0 || testSize >= 1 {
		return nil, nil, errors.NewValidationError("test_size", "must be within (0, 1)", testSize)
	}

	n := f.NumRows()
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest == 0 || nTrain <= 0 {
		return nil, nil, errors.NewValidationError("test_size",
			"with this many rows one of the subsets would be empty", n)
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	perm := rng.Perm(n)
	return f.Take(perm[nTest:]), f.Take(perm[:nTest]), nil
}

// TrainValidateTest splits f 80/20 into train_full and test, then train_full
// 75/25 into train and validate with the same seed: 60/20/20 of the original.
func TrainValidateTest(f *frame.Frame, seed int64) (Split, error) {
	return (&Splitter{TestSize: DefaultTestSize, ValidateSize: DefaultValidateSize, Seed: seed}).split(f)
}

// Splitter holds split parameters for the pipeline.
type Splitter struct {
	TestSize     float64
	ValidateSize float64
	Seed         int64
}

// NewSplitter returns a 60/20/20 splitter with the given seed.
func NewSplitter(seed int64) *Splitter {
	return &Splitter{TestSize: DefaultTestSize, ValidateSize: DefaultValidateSize, Seed: seed}
}

// Split partitions f, logging the resulting sizes.
func (s *Splitter) Split(ctx context.Context, f *frame.Frame) (Split, error) {
	if err := ctx.Err(); err != nil {
		return Split{}, errors.WithStack(err)
	}
	out, err := s.split(f)
	if err != nil {
		return Split{}, errors.NewStageError(log.StageSplit, "split", err)
	}
	log.GetLoggerWithName("Splitter").Info("split dataset",
		log.StageKey, log.StageSplit,
		log.RandomSeedKey, s.Seed,
		log.RowsInKey, f.NumRows(),
		"train_rows", out.Train.NumRows(),
		"validate_rows", out.Validate.NumRows(),
		"test_rows", out.Test.NumRows(),
	)
	return out, nil
}

func (s *Splitter) split(f *frame.Frame) (Split, error) {
	trainFull, test, err := TrainTestSplit(f, s.TestSize, s.Seed)
	if err != nil {
		return Split{}, err
	}
	train, validate, err := TrainTestSplit(trainFull, s.ValidateSize, s.Seed)
	if err != nil {
		return Split{}, err
	}
	return Split{Train: train, Validate: validate, Test: test}, nil
}
