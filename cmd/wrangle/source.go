package main

import (
	"context"

	"gorm.io/gorm"

	"github.com/YuminosukeSato/wrangle/acquire"
	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/internal/config"
)

// lazySQLSource connects on the first Fetch, so a cache hit never needs the
// database to be reachable.
type lazySQLSource struct {
	cfg *config.Config
	db  *gorm.DB
}

func (s *lazySQLSource) Describe() string { return "sql" }

func (s *lazySQLSource) Fetch(ctx context.Context) (*frame.Frame, error) {
	if s.db == nil {
		db, err := acquire.OpenSQL(s.cfg.Database)
		if err != nil {
			return nil, err
		}
		s.db = db
	}
	var opts []acquire.SQLOption
	if s.cfg.IndexColumn != "" {
		opts = append(opts, acquire.WithIndexColumn(s.cfg.IndexColumn))
	}
	return acquire.NewSQLSource(s.db, s.cfg.Query, opts...).Fetch(ctx)
}

func (s *lazySQLSource) Close() error {
	if s.db == nil {
		return nil
	}
	return acquire.CloseSQL(s.db)
}
