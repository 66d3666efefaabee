package database

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// PostgresDialect targets PostgreSQL through lib/pq.
type PostgresDialect struct{}

func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) Name() string       { return "postgres" }
func (d *PostgresDialect) DriverName() string { return "postgres" }

func (d *PostgresDialect) DSN(config DialectConfig) string {
	return config.URL
}

func (d *PostgresDialect) RewriteQuery(query string) string {
	return numberPlaceholders(query)
}

// SupportsLastInsertId is false: lib/pq has no LastInsertId, ids come back
// through RETURNING.
func (d *PostgresDialect) SupportsLastInsertId() bool {
	return false
}

func (d *PostgresDialect) ConfigureConnection(db *sql.DB) error {
	defaultPool.apply(db)
	return nil
}

func (d *PostgresDialect) MigrationsSubdir() string {
	return "postgres"
}

func (d *PostgresDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS migrations (
	id BIGSERIAL PRIMARY KEY,
	filename TEXT UNIQUE NOT NULL,
	executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
)`
}

func (d *PostgresDialect) InsertIgnoreQuery(table string, columns []string) string {
	return "INSERT INTO " + insertColumns(table, columns) + " ON CONFLICT DO NOTHING"
}
