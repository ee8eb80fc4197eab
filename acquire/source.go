// Package acquire loads the raw dataset: from a SQL database through gorm, or
// from a cache (CSV file or redis) filled by an earlier run.
package acquire

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cast"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/internal/config"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
	"github.com/YuminosukeSato/wrangle/pkg/log"
)

// Source produces the raw dataset.
type Source interface {
	Fetch(ctx context.Context) (*frame.Frame, error)
	// Describe names the source in logs, e.g. "sql" or "file".
	Describe() string
}

// Dialector returns the gorm dialector for cfg.Driver. Postgres goes through
// lib/pq.
func Dialector(cfg config.Database) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.New(postgres.Config{DriverName: "postgres", DSN: cfg.DSN()}), nil
	case "mysql":
		return mysql.Open(cfg.DSN()), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, errors.NewValidationError("database.driver", "unsupported driver", cfg.Driver)
	}
}

// OpenSQL opens a connection pool for cfg. The caller closes it with CloseSQL.
func OpenSQL(cfg config.Database) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", cfg.Driver)
	}
	return db, nil
}

// CloseSQL closes the pool behind db.
func CloseSQL(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.WithStack(err)
	}
	return sqlDB.Close()
}

// SQLSource runs one query and turns the result set into a frame.
//
// Column kinds follow the database type names: integer, real, float, double,
// numeric, decimal and boolean columns are numeric, everything else categorical.
// Columns without a declared type (expressions, some sqlite results) are numeric
// when every non-null value scanned as a number. NULL is missing.
type SQLSource struct {
	db          *gorm.DB
	query       string
	args        []any
	indexColumn string
	logger      log.Logger
}

// SQLOption configures a SQLSource.
type SQLOption func(*SQLSource)

// WithArgs binds query parameters.
func WithArgs(args ...any) SQLOption {
	return func(s *SQLSource) { s.args = args }
}

// WithIndexColumn moves the named result column into the row labels.
func WithIndexColumn(name string) SQLOption {
	return func(s *SQLSource) { s.indexColumn = name }
}

// NewSQLSource creates a source running query on db.
func NewSQLSource(db *gorm.DB, query string, opts ...SQLOption) *SQLSource {
	s := &SQLSource{
		db:     db,
		query:  query,
		logger: log.GetLoggerWithName("SQLSource"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SQLSource) Describe() string { return "sql" }

// Fetch runs the query.
func (s *SQLSource) Fetch(ctx context.Context) (*frame.Frame, error) {
	if strings.TrimSpace(s.query) == "" {
		return nil, errors.NewValidationError("query", "must not be empty", s.query)
	}
	start := time.Now()

	rows, err := s.db.WithContext(ctx).Raw(s.query, s.args...).Rows()
	if err != nil {
		return nil, errors.Wrap(err, "run query")
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, errors.Wrap(err, "read column types")
	}
	values := make([][]any, len(types))
	dest := make([]any, len(types))
	for rows.Next() {
		raw := make([]any, len(types))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(err, "scan row")
		}
		for i, v := range raw {
			values[i] = append(values[i], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate rows")
	}

	cols := make([]*frame.Column, len(types))
	for i, ct := range types {
		cols[i] = buildColumn(ct, values[i])
	}
	f, err := frame.New(cols...)
	if err != nil {
		return nil, err
	}
	if s.indexColumn != "" {
		if f, err = f.SetIndex(s.indexColumn); err != nil {
			return nil, err
		}
	}

	s.logger.Info("fetched dataset",
		log.SourceKey, s.Describe(),
		log.OperationKey, log.OperationFetch,
		log.RowsOutKey, f.NumRows(),
		log.ColumnsOutKey, f.NumCols(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return f, nil
}

var numericTypeMarkers = []string{"INT", "REAL", "FLOA", "DOUB", "NUMERIC", "DECIMAL", "BOOL"}

func isNumericType(dbType string) bool {
	t := strings.ToUpper(dbType)
	for _, m := range numericTypeMarkers {
		if strings.Contains(t, m) {
			return true
		}
	}
	return false
}

func buildColumn(ct *sql.ColumnType, values []any) *frame.Column {
	name := ct.Name()
	dbType := ct.DatabaseTypeName()

	numeric := isNumericType(dbType)
	if dbType == "" {
		numeric = allNumbers(values)
	}
	if numeric {
		c, err := numericColumn(name, values)
		if err == nil {
			return c
		}
		errors.Warn(errors.NewDataConversionWarning(name, dbType, "categorical", err.Error()))
	}
	return categoricalColumn(name, values)
}

// allNumbers reports whether every non-null value scanned as a Go number or bool.
// An all-null column is not numeric.
func allNumbers(values []any) bool {
	seen := false
	for _, v := range values {
		switch v.(type) {
		case nil:
			continue
		case int64, int32, int, float64, float32, bool:
			seen = true
		default:
			return false
		}
	}
	return seen
}

func numericColumn(name string, values []any) (*frame.Column, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = nan
			continue
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return frame.NewNumeric(name, out), nil
}

func categoricalColumn(name string, values []any) *frame.Column {
	strs := make([]string, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		if t, ok := v.(time.Time); ok {
			v = t.Format(time.RFC3339Nano)
		}
		strs[i] = cast.ToString(v)
		valid[i] = true
	}
	return frame.NewCategorical(name, strs, valid)
}
