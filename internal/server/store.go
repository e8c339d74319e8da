package server

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"credkeeper/internal/server/config"
	"credkeeper/internal/server/migrations"
	"credkeeper/internal/server/users"
)

// openRepository returns the configured user store and a close function.
// With Postgres, pending migrations are applied before the store is handed
// out.
func openRepository(ctx context.Context, cfg *config.Config) (users.Repository, func() error, error) {
	if cfg.UseMemoryStore {
		return users.NewInMemoryRepository(), func() error { return nil }, nil
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}

	return users.NewPostgresRepository(db), db.Close, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
