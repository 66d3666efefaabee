package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bably/internal/config"
)

// DB wraps the database connection with dialect support
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open creates and configures a connection for the given dialect.
func Open(dialect Dialect, dialectConfig DialectConfig) (*DB, error) {
	db, err := sql.Open(dialect.DriverName(), dialect.DSN(dialectConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := dialect.ConfigureConnection(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure connection: %w", err)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

// OpenSQLite opens a SQLite database file.
func OpenSQLite(path string) (*DB, error) {
	return Open(NewSQLiteDialect(), DialectConfig{Path: path})
}

// InitializeWithConfig creates the connection selected by DB_TYPE.
func InitializeWithConfig(cfg *config.Config) (*DB, error) {
	switch strings.ToLower(cfg.DatabaseType) {
	case "postgres", "postgresql":
		return Open(NewPostgresDialect(), DialectConfig{URL: cfg.DatabaseURL})
	case "mysql":
		return Open(NewMySQLDialect(), DialectConfig{URL: cfg.DatabaseURL})
	case "sqlite", "sqlite3", "":
		return OpenSQLite(cfg.DatabasePath)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DatabaseType)
	}
}

// QueryContext executes a query with automatic placeholder rewriting
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.DB.QueryContext(ctx, db.Dialect.RewriteQuery(query), args...)
}

// QueryRowContext executes a single-row query with automatic placeholder rewriting
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.DB.QueryRowContext(ctx, db.Dialect.RewriteQuery(query), args...)
}

// ExecContext executes a statement with automatic placeholder rewriting
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.DB.ExecContext(ctx, db.Dialect.RewriteQuery(query), args...)
}

// ExecReturningID executes an INSERT and returns the new row's ID.
// PostgreSQL has no LastInsertId, so RETURNING id is appended there.
func (db *DB) ExecReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	return execReturningID(ctx, db.DB, db.Dialect, query, args...)
}

type execQueryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func execReturningID(ctx context.Context, q execQueryer, dialect Dialect, query string, args ...any) (int64, error) {
	rewritten := dialect.RewriteQuery(query)

	if dialect.SupportsLastInsertId() {
		result, err := q.ExecContext(ctx, rewritten, args...)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	}

	rewritten = strings.TrimSuffix(strings.TrimSpace(rewritten), ";")
	rewritten += " RETURNING id"

	var id int64
	if err := q.QueryRowContext(ctx, rewritten, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
