package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

const sqliteDialect = "sqlite3"

// Up runs all pending SQL migrations found in dir.
func Up(ctx context.Context, db *sql.DB, dir string, logger *zap.Logger) error {
	if err := goose.SetDialect(sqliteDialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}

	logger.Info("database migrations applied", zap.String("dir", dir))
	return nil
}
