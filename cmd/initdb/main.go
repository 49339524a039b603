// initdb crea el schema de notas en la base apuntada por DATABASE_URL.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	pg "notes-api/internal/adapters/storage/postgres"
	"notes-api/internal/platform/config"
	"notes-api/internal/platform/logger"
)

func main() {
	log := logger.New(logger.Options{Level: logger.Info, Format: logger.FormatText, App: "initdb"})
	defer func() { _ = log.Sync() }()

	if err := run(log); err != nil {
		log.Error("database initialization failed", map[string]any{"err": err})
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("database initialized", nil)
}

func run(log logger.Logger) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := pg.Open(ctx, cfg.DatabaseURL, pg.Options{MaxOpenConns: 1})
	if err != nil {
		return err
	}
	defer db.Close()

	log.Info("applying schema", nil)
	return pg.Migrate(ctx, db)
}
