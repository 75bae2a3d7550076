// Package db opens the database, applies the schema and seeds demo data.
package db

import (
	"errors"
	"fmt"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// postgres driver and file source for golang-migrate
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/diewo77/traiteur-admin/internal/logger"
	"github.com/diewo77/traiteur-admin/internal/models"
)

// Options controls Connect.
type Options struct {
	Debug      bool
	Retries    int
	RetryDelay time.Duration
}

// Connect opens a postgres connection, retrying while the server starts up.
func Connect(dsn string, opts Options, log *logger.Logger) (*gorm.DB, error) {
	dsn = NormalizeDSN(dsn)
	if dsn == "" {
		return nil, errors.New("empty database DSN")
	}
	if opts.Retries <= 0 {
		opts.Retries = 10
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}
	logLevel := gormlogger.Silent
	if opts.Debug {
		logLevel = gormlogger.Info
	}
	cfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var conn *gorm.DB
	var err error
	for i := 0; i < opts.Retries; i++ {
		conn, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		log.Warn("database connection failed, retrying", "attempt", i+1, "max", opts.Retries, "error", err)
		time.Sleep(opts.RetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if err := conn.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	log.Info("database connected", "target", MaskDSN(dsn))
	return conn, nil
}

// Models lists every table managed by AutoMigrate.
func Models() []any {
	return []any{
		&models.Product{},
		&models.PromoCode{},
		&models.Quote{},
		&models.FinishedQuote{},
		&models.DeletedQuote{},
	}
}

// Tables that must exist once the schema is in place.
var requiredTables = []string{"products", "promo_codes", "quotes", "finished_quotes", "deleted_quotes"}

// AutoMigrate creates or updates the tables from the gorm models.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range Models() {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return CheckSchema(conn)
}

// CheckSchema verifies the required tables exist.
func CheckSchema(conn *gorm.DB) error {
	for _, table := range requiredTables {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// RunSQLMigrations applies the SQL files in dir with golang-migrate.
func RunSQLMigrations(dir, dsn string) error {
	m, err := migrate.New("file://"+dir, ToURLDSN(NormalizeDSN(dsn)))
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
