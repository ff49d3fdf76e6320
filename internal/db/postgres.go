package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/gorm"
)

// InitPostgres opens the sqlx pool used for raw report queries, retrying while
// the database container comes up.
func InitPostgres(dsn string) (*sqlx.DB, error) {
	var err error

	for i := 0; i < 10; i++ {
		var sdb *sqlx.DB
		sdb, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return sdb, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, err
}

// SqlxFromGorm wraps the pool GORM already holds. Used with sqlite, where a
// second connection to an in-memory database would see an empty schema.
func SqlxFromGorm(gdb *gorm.DB, driverName string) (*sqlx.DB, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}
	return sqlx.NewDb(sqlDB, driverName), nil
}
