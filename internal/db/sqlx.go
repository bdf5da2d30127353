package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/gorm"

	"low-altitude/uavops/internal/config"
)

// ConnectSQLX opens the raw-SQL handle used for aggregate queries and health
// pings. Postgres gets its own lib/pq pool; sqlite shares GORM's pool since
// a second in-process connection would not see the same memory database.
func ConnectSQLX(cfg config.Config, gdb *gorm.DB) (*sqlx.DB, error) {
	if cfg.DBDriver == "postgres" {
		var (
			db  *sqlx.DB
			err error
		)
		for i := 0; i < 10; i++ {
			db, err = sqlx.Connect("postgres", cfg.PostgresDSN())
			if err == nil {
				return db, nil
			}
			time.Sleep(500 * time.Millisecond)
		}
		return nil, fmt.Errorf("failed to connect to postgres (sqlx): %w", err)
	}
	return WrapSQLX(gdb)
}

// WrapSQLX exposes GORM's pool through sqlx.
func WrapSQLX(gdb *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	driver := "sqlite3"
	if gdb.Dialector.Name() == "postgres" {
		driver = "postgres"
	}
	return sqlx.NewDb(sqlDB, driver), nil
}
