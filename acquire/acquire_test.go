package acquire

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
	"github.com/YuminosukeSato/wrangle/pkg/log"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Fetch(ctx context.Context) (*frame.Frame, error) {
	args := m.Called(ctx)
	f, _ := args.Get(0).(*frame.Frame)
	return f, args.Error(1)
}

func (m *mockSource) Describe() string { return "mock" }

type brokenCache struct{ NopCache }

func (brokenCache) Key() string                          { return "broken" }
func (brokenCache) Exists(context.Context) (bool, error) { return true, nil }
func (brokenCache) Load(context.Context) (*frame.Frame, error) {
	return nil, errors.New("disk on fire")
}
func (brokenCache) Save(context.Context, *frame.Frame) error {
	return errors.New("disk on fire")
}

// countingCache reports a fixed Exists answer and counts Load calls.
type countingCache struct {
	NopCache
	exists    bool
	existsErr error
	loads     int
}

func (c *countingCache) Exists(context.Context) (bool, error) { return c.exists, c.existsErr }
func (c *countingCache) Load(context.Context) (*frame.Frame, error) {
	c.loads++
	return nil, errors.New("unexpected load")
}

type AcquirerTestSuite struct {
	suite.Suite
	ctx    context.Context
	source *mockSource
	cache  *FileCache
	logger *log.TestLogger
}

func (s *AcquirerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.source = &mockSource{}
	s.cache = NewFileCache(filepath.Join(s.T().TempDir(), "dataset.csv"))
	s.logger, _ = log.NewTestLogger(log.LevelDebug)
}

func (s *AcquirerTestSuite) acquirer(cache Cache) *Acquirer {
	return NewAcquirer(s.source, cache).WithLogger(s.logger)
}

func (s *AcquirerTestSuite) TestMissFetchesAndFillsCache() {
	want := csvFixture(s.T())
	s.source.On("Fetch", s.ctx).Return(want, nil).Once()

	got, err := s.acquirer(s.cache).Acquire(s.ctx)
	s.Require().NoError(err)
	s.Equal(want.Shape(), got.Shape())

	ok, err := s.cache.Exists(s.ctx)
	s.Require().NoError(err)
	s.True(ok)
	s.True(s.logger.ContainsField(log.CacheHitKey, false))
	s.source.AssertExpectations(s.T())
}

func (s *AcquirerTestSuite) TestHitSkipsSource() {
	s.Require().NoError(s.cache.Save(s.ctx, csvFixture(s.T())))

	got, err := s.acquirer(s.cache).Acquire(s.ctx)
	s.Require().NoError(err)
	s.Equal([]int{10, 11, 12}, got.Index())
	s.True(s.logger.ContainsField(log.CacheHitKey, true))
	s.source.AssertNotCalled(s.T(), "Fetch", mock.Anything)
}

func (s *AcquirerTestSuite) TestSecondRunUsesCache() {
	s.source.On("Fetch", s.ctx).Return(csvFixture(s.T()), nil).Once()
	a := s.acquirer(s.cache)

	_, err := a.Acquire(s.ctx)
	s.Require().NoError(err)
	_, err = a.Acquire(s.ctx)
	s.Require().NoError(err)

	s.source.AssertNumberOfCalls(s.T(), "Fetch", 1)
}

func (s *AcquirerTestSuite) TestRefreshBypassesCache() {
	s.Require().NoError(s.cache.Save(s.ctx, csvFixture(s.T())))
	fresh := frame.MustNew(frame.NewNumeric("x", []float64{1, 2}))
	s.source.On("Fetch", s.ctx).Return(fresh, nil).Once()

	a := s.acquirer(s.cache)
	a.Refresh = true
	got, err := a.Acquire(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"x"}, got.Names())

	cached, err := s.cache.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"x"}, cached.Names(), "refresh should overwrite the cache")
}

func (s *AcquirerTestSuite) TestBrokenCacheIsLoggedNotFatal() {
	s.source.On("Fetch", s.ctx).Return(csvFixture(s.T()), nil).Once()

	_, err := s.acquirer(brokenCache{}).Acquire(s.ctx)
	s.Require().NoError(err)
	s.True(s.logger.ContainsMessage("cache read failed"))
	s.True(s.logger.ContainsMessage("cache write failed"))
}

func (s *AcquirerTestSuite) TestAbsentEntryIsNotLoaded() {
	s.source.On("Fetch", s.ctx).Return(csvFixture(s.T()), nil).Once()
	cache := &countingCache{}

	_, err := s.acquirer(cache).Acquire(s.ctx)
	s.Require().NoError(err)
	s.Zero(cache.loads)
	s.False(s.logger.ContainsMessage("cache read failed"))
}

func (s *AcquirerTestSuite) TestCacheCheckFailureFetches() {
	s.source.On("Fetch", s.ctx).Return(csvFixture(s.T()), nil).Once()
	cache := &countingCache{exists: true, existsErr: errors.New("permission denied")}

	_, err := s.acquirer(cache).Acquire(s.ctx)
	s.Require().NoError(err)
	s.Zero(cache.loads)
	s.True(s.logger.ContainsMessage("cache check failed"))
	s.source.AssertExpectations(s.T())
}

func (s *AcquirerTestSuite) TestCachedKindsMatchFetched() {
	fetched := frame.MustNew(
		frame.NewCategorical("zip", []string{"02134", "10001"}, nil),
		frame.NewNumeric("rooms", []float64{3, 4}),
	)
	s.source.On("Fetch", s.ctx).Return(fetched, nil).Once()
	a := s.acquirer(s.cache)

	first, err := a.Acquire(s.ctx)
	s.Require().NoError(err)
	second, err := a.Acquire(s.ctx)
	s.Require().NoError(err)

	s.Equal(first.NumericNames(), second.NumericNames())
	s.Equal(first.CategoricalNames(), second.CategoricalNames())
	zip, err := second.Column("zip")
	s.Require().NoError(err)
	s.Equal("02134", zip.Str(0))
	s.source.AssertNumberOfCalls(s.T(), "Fetch", 1)
}

func (s *AcquirerTestSuite) TestEmptyDatasetIsCached() {
	empty := frame.MustNew(
		frame.NewNumeric("x", nil),
		frame.NewCategorical("c", nil, nil),
	)
	s.source.On("Fetch", s.ctx).Return(empty, nil)
	a := s.acquirer(s.cache)

	for i := 0; i < 3; i++ {
		got, err := a.Acquire(s.ctx)
		s.Require().NoError(err)
		s.Equal(0, got.NumRows())
		s.Equal([]string{"x", "c"}, got.Names())
	}
	s.False(s.logger.ContainsMessage("cache read failed"))
	s.source.AssertNumberOfCalls(s.T(), "Fetch", 1)
}

func (s *AcquirerTestSuite) TestSourceErrorIsStageError() {
	s.source.On("Fetch", s.ctx).Return(nil, errors.New("connection refused")).Once()

	_, err := s.acquirer(nil).Acquire(s.ctx)
	s.Require().Error(err)
	var stageErr *errors.StageError
	s.Require().True(errors.As(err, &stageErr))
	s.Equal(log.StageAcquire, stageErr.Stage)
}

func (s *AcquirerTestSuite) TestNoSourceAndEmptyCache() {
	a := NewAcquirer(nil, s.cache).WithLogger(s.logger)
	_, err := a.Acquire(s.ctx)
	s.Error(err)
}

func TestAcquirerTestSuite(t *testing.T) {
	suite.Run(t, new(AcquirerTestSuite))
}
