package core

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"clockzy.com/clockzy/model"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

// ParseLogLevel maps the configured level name to a LogLevel. Unknown names
// fall back to warn.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "info", "debug":
		return LogLevelInfo
	default:
		return LogLevelWarn
	}
}

func (l LogLevel) gorm() logger.LogLevel {
	switch l {
	case LogLevelError:
		return logger.Error
	case LogLevelWarn:
		return logger.Warn
	case LogLevelInfo:
		return logger.Info
	default:
		return logger.Silent
	}
}

type DatabaseManager struct {
	SqlDB    *sql.DB
	LogLevel LogLevel

	db *gorm.DB
}

// New opens the connection pool and binds gorm to it.
// A dsn without a schema is only good for EnsureDatabase.
func New(dsn string, maxConnection int, level LogLevel) (*DatabaseManager, error) {
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxConnection)
	sqlDB.SetMaxIdleConns(maxConnection)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         logger.Default.LogMode(level.gorm()),
		TranslateError: true,
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return &DatabaseManager{SqlDB: sqlDB, LogLevel: level, db: db}, nil
}

// Ping checks that the server answers.
func (dm *DatabaseManager) Ping(ctx context.Context) error {
	if err := dm.SqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping pool: %w", err)
	}
	return nil
}

// Close closes the pool
func (dm *DatabaseManager) Close() error {
	return dm.SqlDB.Close()
}

func (dm *DatabaseManager) Exec(ctx context.Context, fn func(db *gorm.DB) error) error {
	return fn(dm.db.WithContext(ctx))
}

// Transaction runs fn in a single transaction.
func (dm *DatabaseManager) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return dm.db.WithContext(ctx).Transaction(fn)
}

func (dm *DatabaseManager) GetAllDatabases(ctx context.Context) ([]string, error) {
	rows, err := dm.SqlDB.QueryContext(ctx, "SHOW DATABASES")
	if err != nil {
		return nil, fmt.Errorf("failed to query databases: %w", err)
	}
	defer rows.Close()

	var databases []string
	for rows.Next() {
		var db string
		if err := rows.Scan(&db); err != nil {
			return nil, fmt.Errorf("failed to scan database name: %w", err)
		}

		// Filter out system databases
		switch db {
		case "information_schema", "mysql", "performance_schema", "sys":
			continue
		}
		databases = append(databases, db)
	}

	return databases, rows.Err()
}

// EnsureDatabase creates the schema when the server does not have it yet.
// It reports whether the schema was created.
func (dm *DatabaseManager) EnsureDatabase(ctx context.Context, name string) (bool, error) {
	databases, err := dm.GetAllDatabases(ctx)
	if err != nil {
		return false, err
	}
	for _, db := range databases {
		if db == name {
			return false, nil
		}
	}

	if _, err := dm.SqlDB.ExecContext(ctx, "CREATE DATABASE `"+name+"` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci"); err != nil {
		return false, fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return true, nil
}

// Migrate creates or updates every table of the schema.
func (dm *DatabaseManager) Migrate(ctx context.Context) error {
	return dm.Exec(ctx, func(db *gorm.DB) error {
		if err := db.AutoMigrate(model.All()...); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		return nil
	})
}
