package acquire

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/internal/config"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
)

// Cache stores the acquired dataset between runs. Load returns
// errors.ErrCacheMiss when nothing is stored.
type Cache interface {
	Exists(ctx context.Context) (bool, error)
	Load(ctx context.Context) (*frame.Frame, error)
	Save(ctx context.Context, f *frame.Frame) error
	// Key is the file path or redis key, for logs.
	Key() string
	// Describe names the backend: "file", "redis" or "none".
	Describe() string
}

// NewCache builds the backend selected by cfg.Backend.
func NewCache(cfg config.Cache) (Cache, error) {
	switch cfg.Backend {
	case "file":
		return NewFileCache(cfg.Path), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisCache(client, cfg.Redis.Key, cfg.TTL), nil
	case "none", "":
		return NopCache{}, nil
	default:
		return nil, errors.NewValidationError("cache.backend", "must be file, redis or none", cfg.Backend)
	}
}

// FileCache keeps the dataset as a CSV file in the WriteDataset format.
type FileCache struct {
	path string
}

// NewFileCache returns a cache backed by the CSV file at path.
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

func (c *FileCache) Key() string      { return c.path }
func (c *FileCache) Describe() string { return "file" }

func (c *FileCache) Exists(_ context.Context) (bool, error) {
	info, err := os.Stat(c.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.WithStack(err)
	}
	return info.Mode().IsRegular(), nil
}

func (c *FileCache) Load(_ context.Context) (*frame.Frame, error) {
	file, err := os.Open(c.path)
	if os.IsNotExist(err) {
		return nil, errors.ErrCacheMiss
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer file.Close()
	return ReadDataset(file)
}

// Save writes to a temporary file in the same directory and renames it into
// place, so a reader never sees a partial file.
func (c *FileCache) Save(_ context.Context, f *frame.Frame) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create cache directory %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return errors.WithStack(err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteDataset(tmp, f); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.WithStack(err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return errors.Wrapf(err, "replace %s", c.path)
	}
	return nil
}

// RedisCache keeps the dataset as WriteDataset CSV bytes under one redis key.
type RedisCache struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewRedisCache returns a cache storing under key with the given expiry.
// A zero ttl keeps the value until it is overwritten.
func NewRedisCache(client redis.Cmdable, key string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, key: key, ttl: ttl}
}

func (c *RedisCache) Key() string      { return c.key }
func (c *RedisCache) Describe() string { return "redis" }

func (c *RedisCache) Exists(ctx context.Context) (bool, error) {
	n, err := c.client.Exists(ctx, c.key).Result()
	if err != nil {
		return false, errors.Wrap(err, "redis exists")
	}
	return n > 0, nil
}

func (c *RedisCache) Load(ctx context.Context) (*frame.Frame, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err == redis.Nil {
		return nil, errors.ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}
	return ReadDataset(bytes.NewReader(data))
}

func (c *RedisCache) Save(ctx context.Context, f *frame.Frame) error {
	var buf bytes.Buffer
	if err := WriteDataset(&buf, f); err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key, buf.Bytes(), c.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

// NopCache never holds anything.
type NopCache struct{}

func (NopCache) Key() string                                { return "" }
func (NopCache) Describe() string                           { return "none" }
func (NopCache) Exists(context.Context) (bool, error)       { return false, nil }
func (NopCache) Load(context.Context) (*frame.Frame, error) { return nil, errors.ErrCacheMiss }
func (NopCache) Save(context.Context, *frame.Frame) error   { return nil }
