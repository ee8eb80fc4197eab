// Package config loads wrangle settings from defaults, an optional YAML file and
// WRANGLE_* environment variables.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/wrangle/pkg/errors"
	"github.com/YuminosukeSato/wrangle/pkg/log"
)

// EnvPrefix prefixes every environment override, e.g. WRANGLE_DATABASE_HOST.
const EnvPrefix = "WRANGLE"

// Config is the full configuration of a run.
type Config struct {
	Database    Database `mapstructure:"database" yaml:"database"`
	Query       string   `mapstructure:"query" yaml:"query"`
	IndexColumn string   `mapstructure:"index_column" yaml:"index_column"`
	Cache       Cache    `mapstructure:"cache" yaml:"cache"`
	Clean       Clean    `mapstructure:"clean" yaml:"clean"`
	Split       Split    `mapstructure:"split" yaml:"split"`
	Scale       Scale    `mapstructure:"scale" yaml:"scale"`

	LogLevel        string `mapstructure:"log_level" yaml:"log_level"`
	MetricsTextfile string `mapstructure:"metrics_textfile" yaml:"metrics_textfile"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir"`
}

// Database holds connection parameters. They are always supplied by the caller;
// nothing in the acquisition layer has its own defaults.
type Database struct {
	Driver   string `mapstructure:"driver" yaml:"driver"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	Name     string `mapstructure:"name" yaml:"name"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
}

// DSN renders the connection string for the configured driver. For sqlite Name is
// the database file.
func (d Database) DSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", d.User, d.Password, d.Host, d.Port, d.Name)
	default:
		return d.Name
	}
}

// Cache selects where acquired data is kept between runs.
type Cache struct {
	// Backend is "file", "redis" or "none".
	Backend string        `mapstructure:"backend" yaml:"backend"`
	Path    string        `mapstructure:"path" yaml:"path"`
	Redis   Redis         `mapstructure:"redis" yaml:"redis"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type Redis struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Key      string `mapstructure:"key" yaml:"key"`
}

// Clean configures the cleaning stages, in the order they run.
type Clean struct {
	DropColumns    []string       `mapstructure:"drop_columns" yaml:"drop_columns"`
	Fill           map[string]any `mapstructure:"fill" yaml:"fill"`
	PropReqCols    float64        `mapstructure:"prop_req_cols" yaml:"prop_req_cols"`
	PropReqRows    float64        `mapstructure:"prop_req_rows" yaml:"prop_req_rows"`
	DropNulls      bool           `mapstructure:"drop_nulls" yaml:"drop_nulls"`
	DropDuplicates bool           `mapstructure:"drop_duplicates" yaml:"drop_duplicates"`
	Outliers       bool           `mapstructure:"outliers" yaml:"outliers"`
	IQRMultiplier  float64        `mapstructure:"iqr_multiplier" yaml:"iqr_multiplier"`
}

type Split struct {
	Seed int64 `mapstructure:"seed" yaml:"seed"`
}

// Scale lists the columns to min-max scale; empty means every numeric column.
type Scale struct {
	Columns []string `mapstructure:"columns" yaml:"columns"`
	Strict  bool     `mapstructure:"strict" yaml:"strict"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("query", "")
	v.SetDefault("index_column", "")

	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.path", filepath.Join("data", "dataset.csv"))
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.key", "wrangle:dataset")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("clean.drop_columns", []string{})
	v.SetDefault("clean.fill", map[string]any{})
	v.SetDefault("clean.prop_req_cols", 0.5)
	v.SetDefault("clean.prop_req_rows", 0.75)
	v.SetDefault("clean.drop_nulls", false)
	v.SetDefault("clean.drop_duplicates", false)
	v.SetDefault("clean.outliers", false)
	v.SetDefault("clean.iqr_multiplier", 1.5)

	v.SetDefault("split.seed", 123)
	v.SetDefault("scale.columns", []string{})
	v.SetDefault("scale.strict", false)

	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_textfile", "")
	v.SetDefault("output_dir", "out")
}

// Load reads the configuration.
// Precedence: env > config file > defaults. With an empty cfgFile, ./wrangle.yaml
// is read when present.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfgFile)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("wrangle")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return &c, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return errors.NewValidationError("database.driver", "must be postgres, mysql or sqlite", c.Database.Driver)
	}
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return errors.NewValidationError("cache.backend", "must be file, redis or none", c.Cache.Backend)
	}
	if c.Cache.Backend == "file" && c.Cache.Path == "" {
		return errors.NewValidationError("cache.path", "required for the file cache", c.Cache.Path)
	}
	for name, p := range map[string]float64{
		"clean.prop_req_cols": c.Clean.PropReqCols,
		"clean.prop_req_rows": c.Clean.PropReqRows,
	} {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return errors.NewValidationError(name, "must be within [0, 1]", p)
		}
	}
	if c.Clean.IQRMultiplier < 0 {
		return errors.NewValidationError("clean.iqr_multiplier", "must not be negative", c.Clean.IQRMultiplier)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.NewValidationError("log_level", "must be debug, info, warn or error", c.LogLevel)
	}
	return nil
}

// Save writes c as YAML to path, creating parent directories.
func Save(c *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "mkdir config dir")
		}
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal yaml")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrap(err, "write config")
	}
	return nil
}
