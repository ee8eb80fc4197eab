package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/wrangle/pkg/errors"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wrangle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", c.Database.Driver)
	assert.Equal(t, 5432, c.Database.Port)
	assert.Equal(t, "file", c.Cache.Backend)
	assert.Equal(t, 24*time.Hour, c.Cache.TTL)
	assert.Equal(t, 0.5, c.Clean.PropReqCols)
	assert.Equal(t, 0.75, c.Clean.PropReqRows)
	assert.Equal(t, 1.5, c.Clean.IQRMultiplier)
	assert.Equal(t, int64(123), c.Split.Seed)
	assert.Equal(t, "info", c.LogLevel)
	assert.NoError(t, c.Validate())
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	path := writeFile(t, `
database:
  driver: mysql
  host: db.internal
  port: 3306
  user: analyst
  name: zillow
query: SELECT * FROM properties
index_column: id
cache:
  backend: redis
  ttl: 1h
clean:
  prop_req_rows: 0.6
  outliers: true
  drop_columns: [parcelid]
  fill:
    pool: 0
scale:
  columns: [area, tax]
`)
	t.Setenv("WRANGLE_CLEAN_PROP_REQ_ROWS", "0.9")
	t.Setenv("WRANGLE_DATABASE_PASSWORD", "s3cret")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mysql", c.Database.Driver)
	assert.Equal(t, "db.internal", c.Database.Host)
	assert.Equal(t, "s3cret", c.Database.Password, "env fills keys absent from the file")
	assert.Equal(t, 0.9, c.Clean.PropReqRows, "env overrides the file")
	assert.Equal(t, 0.5, c.Clean.PropReqCols, "defaults fill the rest")
	assert.True(t, c.Clean.Outliers)
	assert.Equal(t, []string{"parcelid"}, c.Clean.DropColumns)
	assert.Contains(t, c.Clean.Fill, "pool")
	assert.Equal(t, []string{"area", "tax"}, c.Scale.Columns)
	assert.Equal(t, time.Hour, c.Cache.TTL)
	assert.Equal(t, "id", c.IndexColumn)
	assert.Equal(t, "analyst:s3cret@tcp(db.internal:3306)/zillow?parseTime=true", c.Database.DSN())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	pg := Database{Driver: "postgres", Host: "h", Port: 5432, User: "u", Password: "p", Name: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", pg.DSN())

	lite := Database{Driver: "sqlite", Name: "file.db"}
	assert.Equal(t, "file.db", lite.DSN())
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *Config)
		param  string
	}{
		{"driver", func(c *Config) { c.Database.Driver = "oracle" }, "database.driver"},
		{"backend", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"file path", func(c *Config) { c.Cache.Path = "" }, "cache.path"},
		{"cols prop", func(c *Config) { c.Clean.PropReqCols = 1.2 }, "clean.prop_req_cols"},
		{"rows prop", func(c *Config) { c.Clean.PropReqRows = -0.1 }, "clean.prop_req_rows"},
		{"iqr", func(c *Config) { c.Clean.IQRMultiplier = -1 }, "clean.iqr_multiplier"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *base
			tt.mutate(&c)
			err := c.Validate()
			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve), "err = %v", err)
			assert.Equal(t, tt.param, ve.ParamName)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	c.Query = "SELECT 1"
	c.Scale.Columns = []string{"x"}
	c.Cache.TTL = 90 * time.Minute

	path := filepath.Join(t.TempDir(), "nested", "wrangle.yaml")
	require.NoError(t, Save(c, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", loaded.Query)
	assert.Equal(t, []string{"x"}, loaded.Scale.Columns)
	assert.Equal(t, 90*time.Minute, loaded.Cache.TTL)
}
