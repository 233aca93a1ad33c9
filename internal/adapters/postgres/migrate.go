package postgres

import (
	"context"
	"embed"
	"errors"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies schema migrations. command is one of up, down, status,
// version or reset.
func (db *DB) Migrate(ctx context.Context, command string) error {
	if db.pool == nil {
		return errors.New("migrate needs a live connection pool")
	}
	sqlDB := stdlib.OpenDBFromPool(db.pool)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.RunContext(ctx, command, sqlDB, "migrations")
}
