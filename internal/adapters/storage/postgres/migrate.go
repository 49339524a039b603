package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema.sql
var schemaSQL string

// Migrate crea la tabla notes (idempotente).
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range statements(schemaSQL) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migrate: %w", err)
		}
	}
	return nil
}

// statements separa por ';' y descarta comentarios de línea y vacíos.
func statements(script string) []string {
	out := make([]string, 0)
	for _, chunk := range strings.Split(script, ";") {
		lines := make([]string, 0)
		for _, line := range strings.Split(chunk, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		if stmt := strings.TrimSpace(strings.Join(lines, "\n")); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
