package database

import (
	"database/sql"
	"fmt"
	"log"

	"vocabdrill/internal/config"
)

// DB wraps sql.DB with dialect-aware query rewriting
type DB struct {
	*sql.DB
	Dialect Dialect
}

// NewDialect returns the Dialect implementation for the configured database type
func NewDialect(databaseType string) (Dialect, error) {
	switch databaseType {
	case "sqlite":
		return NewSQLiteDialect(), nil
	case "postgres":
		return NewPostgresDialect(), nil
	case "mysql":
		return NewMySQLDialect(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", databaseType)
	}
}

// Initialize opens the database connection, configures it, and runs migrations
func Initialize(cfg *config.Config) (*DB, error) {
	dialect, err := NewDialect(cfg.DatabaseType)
	if err != nil {
		return nil, err
	}

	dsn := dialect.DSN(DialectConfig{
		Path: cfg.DatabasePath,
		URL:  cfg.DatabaseURL,
	})

	sqlDB, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := dialect.ConfigureConnection(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to configure connection: %w", err)
	}

	db := &DB{DB: sqlDB, Dialect: dialect}

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Printf("Database initialized (%s)", cfg.DatabaseType)
	return db, nil
}

// Exec executes a query with automatic placeholder rewriting
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.DB.Exec(db.Dialect.RewriteQuery(query), args...)
}

// Query executes a query with automatic placeholder rewriting
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.DB.Query(db.Dialect.RewriteQuery(query), args...)
}

// QueryRow executes a query that returns a single row with automatic placeholder rewriting
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRow(db.Dialect.RewriteQuery(query), args...)
}

// ExecReturningID executes an INSERT and returns the new row's ID,
// handling the LastInsertId/RETURNING split between drivers
func (db *DB) ExecReturningID(query string, args ...interface{}) (int64, error) {
	rewritten := db.Dialect.RewriteQuery(query)

	if db.Dialect.SupportsLastInsertId() {
		result, err := db.DB.Exec(rewritten, args...)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	}

	var id int64
	err := db.DB.QueryRow(appendReturningID(rewritten), args...).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
