package db

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
}

// OpenPostgres оборачивает уже открытый пул lib/pq в gorm.
func OpenPostgres(sqlDB *sql.DB) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}
	return gdb, nil
}

// OpenSQLite открывает встраиваемую базу. Для ":memory:" пул ограничен одним
// соединением, иначе каждое соединение видит свою пустую базу.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	if dsn == ":memory:" {
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return gdb, nil
}

// Open выбирает драйвер по имени из конфигурации.
func Open(ctx context.Context, driver, url string) (*gorm.DB, error) {
	switch driver {
	case DriverPostgres, "":
		sqlDB, err := Connect(ctx, url)
		if err != nil {
			return nil, err
		}
		return OpenPostgres(sqlDB)
	case DriverSQLite:
		return OpenSQLite(url)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Ping проверяет, что база отвечает.
func Ping(ctx context.Context, gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
