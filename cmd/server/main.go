package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/diewo77/traiteur-admin/internal/config"
	"github.com/diewo77/traiteur-admin/internal/logger"
)

var (
	migrateOnlyFlag   = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag      = flag.Bool("seed-only", false, "Run DB seed and exit")
	migrationsDirFlag = flag.String("migrations-dir", "migrations", "Directory holding SQL migrations (MIGRATIONS=1)")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	app, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Fatal("startup failed", "error", err)
	}
	defer app.close()

	if *migrateOnlyFlag {
		if err := app.migrate(*migrationsDirFlag); err != nil {
			log.Fatal("migration failed", "error", err)
		}
		log.Info("migrations completed")
		return
	}
	if *seedOnlyFlag {
		if err := app.seed(); err != nil {
			log.Fatal("seeding failed", "error", err)
		}
		log.Info("seeding completed")
		return
	}

	if err := app.migrate(*migrationsDirFlag); err != nil {
		log.Fatal("migration failed", "error", err)
	}
	if cfg.App.Seed {
		if err := app.seed(); err != nil {
			log.Fatal("seeding failed", "error", err)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port, "dev", cfg.App.Dev, "cache", cfg.Redis.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	log.Info("server stopped gracefully")
}
