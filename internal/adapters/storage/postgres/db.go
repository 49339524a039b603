package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sethvargo/go-retry"
)

type Options struct {
	MaxOpenConns int

	// Reintentos del ping inicial (la DB puede levantar después que la app).
	PingAttempts uint64
	PingBackoff  time.Duration
}

// Open abre una conexión pool a Postgres usando pgx (database/sql)
// y espera a que responda el ping.
func Open(ctx context.Context, dsn string, opts Options) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen / 2)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	attempts := opts.PingAttempts
	if attempts == 0 {
		attempts = 5
	}
	base := opts.PingBackoff
	if base <= 0 {
		base = 200 * time.Millisecond
	}

	b := retry.NewExponential(base)
	b = retry.WithCappedDuration(5*time.Second, b)
	b = retry.WithMaxRetries(attempts-1, b)

	err = retry.Do(ctx, b, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		if err := db.PingContext(pingCtx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return db, nil
}
