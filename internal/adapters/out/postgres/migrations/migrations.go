// Package migrations embeds the goose schema migrations of the service.
package migrations

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"

	_ "github.com/lib/pq"
)

//go:embed *.sql
var FS embed.FS

// Up applies all pending migrations to the database behind dsn.
func Up(ctx context.Context, dsn string) error {
	db, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	return UpDB(ctx, db)
}

// UpDB applies all pending migrations using an open connection.
func UpDB(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
