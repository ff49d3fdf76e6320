package db

import (
	"fmt"

	"soultrack/followup/internal/config"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// Open connects GORM and sqlx to the configured database and migrates the
// schema. With sqlite both share one pool.
func Open(cfg *config.Config) (*gorm.DB, *sqlx.DB, error) {
	var (
		gdb *gorm.DB
		sdb *sqlx.DB
		err error
	)

	switch cfg.DBDriver {
	case "sqlite":
		if gdb, err = InitORM("sqlite", cfg.SQLitePath); err != nil {
			return nil, nil, err
		}
		if sdb, err = SqlxFromGorm(gdb, "sqlite3"); err != nil {
			return nil, nil, err
		}
	case "postgres":
		dsn := cfg.Postgres.DSN()
		if sdb, err = InitPostgres(dsn); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres (sqlx): %w", err)
		}
		if gdb, err = InitORM("postgres", dsn); err != nil {
			sdb.Close()
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if err := Migrate(gdb); err != nil {
		sdb.Close()
		return nil, nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return gdb, sdb, nil
}
