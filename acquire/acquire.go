package acquire

import (
	"context"
	"time"

	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
	"github.com/YuminosukeSato/wrangle/pkg/log"
)

// Acquirer serves the dataset from its cache when possible and otherwise
// fetches it from the source and fills the cache.
type Acquirer struct {
	Source Source
	Cache  Cache
	// Refresh bypasses the cache read. The fetched frame is still saved.
	Refresh bool

	logger log.Logger
}

// NewAcquirer creates an Acquirer. A nil cache disables caching.
func NewAcquirer(source Source, cache Cache) *Acquirer {
	if cache == nil {
		cache = NopCache{}
	}
	return &Acquirer{
		Source: source,
		Cache:  cache,
		logger: log.GetLoggerWithName("Acquirer"),
	}
}

// WithLogger replaces the component logger.
func (a *Acquirer) WithLogger(l log.Logger) *Acquirer {
	a.logger = l
	return a
}

// Acquire returns the dataset. A cache that cannot be read or written is logged
// and skipped; only a failing source is an error.
func (a *Acquirer) Acquire(ctx context.Context) (*frame.Frame, error) {
	start := time.Now()
	logger := a.logger.With(log.StageKey, log.StageAcquire, log.CacheKeyKey, a.Cache.Key())

	if !a.Refresh {
		if f, ok := a.loadCached(ctx, logger); ok {
			logger.Info("loaded dataset from cache",
				log.SourceKey, a.Cache.Describe(),
				log.OperationKey, log.OperationLoad,
				log.CacheHitKey, true,
				log.RowsOutKey, f.NumRows(),
				log.ColumnsOutKey, f.NumCols(),
				log.DurationMsKey, time.Since(start).Milliseconds(),
			)
			return f, nil
		}
	}

	if a.Source == nil {
		return nil, errors.NewStageError(log.StageAcquire, "fetch",
			errors.NewValueError("Acquirer.Acquire", "no cached dataset and no source configured"))
	}
	f, err := a.Source.Fetch(ctx)
	if err != nil {
		return nil, errors.NewStageError(log.StageAcquire, "fetch", err)
	}

	if err := a.Cache.Save(ctx, f); err != nil {
		logger.Warn("cache write failed", log.SourceKey, a.Cache.Describe(), "error", err.Error())
	} else {
		logger.Debug("stored dataset in cache", log.SourceKey, a.Cache.Describe(), log.OperationKey, log.OperationStore)
	}

	logger.Info("acquired dataset",
		log.SourceKey, a.Source.Describe(),
		log.CacheHitKey, false,
		log.RowsOutKey, f.NumRows(),
		log.ColumnsOutKey, f.NumCols(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return f, nil
}

// loadCached returns the cached frame when the cache holds one that can be read.
func (a *Acquirer) loadCached(ctx context.Context, logger log.Logger) (*frame.Frame, bool) {
	exists, err := a.Cache.Exists(ctx)
	if err != nil {
		logger.Warn("cache check failed, fetching from source",
			log.SourceKey, a.Cache.Describe(), "error", err.Error())
		return nil, false
	}
	if !exists {
		return nil, false
	}

	f, err := a.Cache.Load(ctx)
	switch {
	case err == nil:
		return f, true
	case errors.Is(err, errors.ErrCacheMiss):
		// removed or expired since Exists
	default:
		logger.Warn("cache read failed, fetching from source",
			log.SourceKey, a.Cache.Describe(), "error", err.Error())
	}
	return nil, false
}
