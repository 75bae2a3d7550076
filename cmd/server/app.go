package main

import (
	"context"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/traiteur-admin/internal/cache"
	"github.com/diewo77/traiteur-admin/internal/config"
	"github.com/diewo77/traiteur-admin/internal/db"
	"github.com/diewo77/traiteur-admin/internal/logger"
	"github.com/diewo77/traiteur-admin/internal/monitoring"
	"github.com/diewo77/traiteur-admin/internal/server"
)

// App holds the long-lived resources of the process.
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *gorm.DB
	cache   cache.DirectoryCache
	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	conn, err := db.Connect(cfg.Database.DSN(), db.Options{Debug: cfg.Database.Debug}, log)
	if err != nil {
		return nil, err
	}
	app := &App{cfg: cfg, log: log, db: conn, cache: cache.Noop{}}
	if sqlDB, err := conn.DB(); err == nil {
		app.closers = append(app.closers, sqlDB.Close)
	}

	if cfg.Redis.Enabled() {
		c, closeFn, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			// the directory is rebuilt on every request without a cache
			log.Warn("redis unavailable, client directory cache disabled", "error", err)
		} else {
			app.cache = c
			app.closers = append(app.closers, closeFn)
		}
	}

	monitoring.Init()
	return app, nil
}

// migrate runs the SQL migrations when MIGRATIONS=1, AutoMigrate otherwise.
func (a *App) migrate(dir string) error {
	if a.cfg.App.Migrations {
		if err := db.RunSQLMigrations(dir, a.cfg.Database.DSN()); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		return db.CheckSchema(a.db)
	}
	return db.AutoMigrate(a.db)
}

func (a *App) seed() error {
	return db.Seed(a.db)
}

func (a *App) handler() http.Handler {
	return server.New(server.Deps{DB: a.db, Cache: a.cache, Log: a.log})
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
}
