// Package log defines standard attribute keys for wrangling operations.
//
// Keys follow a hierarchical naming convention ("data.rows_in", "wrangle.stage") so
// log lines from acquisition, cleaning, splitting and scaling can be filtered and
// aggregated the same way.

package log

// Run and stage context
const (
	// RunIDKey identifies one CLI invocation. Every line of a run carries it.
	RunIDKey = "run.id"

	// StageKey names the pipeline stage emitting the line.
	// Standard values are the Stage* constants below.
	StageKey = "wrangle.stage"

	// ComponentKey identifies the package or type doing the work.
	// Examples: "Pipeline", "Acquirer", "FrameScaler"
	ComponentKey = "wrangle.component"

	// OperationKey is the operation within a component: "fit", "transform", "fetch".
	OperationKey = "wrangle.operation"
)

// Data shape
const (
	// RowsInKey and RowsOutKey record the row count before and after a stage.
	RowsInKey  = "data.rows_in"
	RowsOutKey = "data.rows_out"

	// ColumnsInKey and ColumnsOutKey record the column count before and after a stage.
	ColumnsInKey  = "data.columns_in"
	ColumnsOutKey = "data.columns_out"

	// ColumnKey names a single column a line is about.
	ColumnKey = "data.column"

	// ColumnsKey lists several columns, e.g. the columns to scale.
	ColumnsKey = "data.columns"

	// ThresholdKey records a computed keep threshold (present-value count).
	ThresholdKey = "data.threshold"
)

// Acquisition
const (
	// SourceKey describes where data came from: "sql", "file", "redis".
	SourceKey = "acquire.source"

	// CacheHitKey is true when the dataset was served from a cache.
	CacheHitKey = "acquire.cache_hit"

	// CacheKeyKey is the cache path or redis key.
	CacheKeyKey = "acquire.cache_key"
)

// Performance and reproducibility
const (
	// DurationMsKey records elapsed time in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// RandomSeedKey records the seed used by the splitter.
	RandomSeedKey = "config.random_seed"
)

// Error context
const (
	// ErrorCodeKey is a machine readable error code (see the Error* constants).
	ErrorCodeKey = "error.code"

	// SuggestionKey carries a hint for resolving the problem.
	SuggestionKey = "error.suggestion"
)

// Standard values.
const (
	StageAcquire   = "acquire"
	StageDrop      = "drop_columns"
	StageImpute    = "impute"
	StagePrune     = "prune"
	StageDropNulls = "drop_nulls"
	StageDedup     = "dedup"
	StageOutliers  = "outliers"
	StageSplit     = "split"
	StageScale     = "scale"
	OperationFit   = "fit"
	OperationFetch = "fetch"
	OperationLoad  = "load"
	OperationStore = "store"

	ErrorDegenerate = "DEGENERATE_COLUMN"
	ErrorEmptyData  = "EMPTY_DATA"
)
