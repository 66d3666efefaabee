package database

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDialect targets a local database file through go-sqlite3.
type SQLiteDialect struct{}

func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) Name() string       { return "sqlite" }
func (d *SQLiteDialect) DriverName() string { return "sqlite3" }

// DSN turns on foreign keys for every pooled connection, not just the first,
// and waits on a locked database instead of failing at once.
func (d *SQLiteDialect) DSN(config DialectConfig) string {
	return "file:" + config.Path + "?_foreign_keys=on&_busy_timeout=5000"
}

func (d *SQLiteDialect) RewriteQuery(query string) string {
	return query
}

func (d *SQLiteDialect) SupportsLastInsertId() bool {
	return true
}

func (d *SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	defaultPool.apply(db)

	_, err := db.Exec("PRAGMA journal_mode=WAL")
	return err
}

func (d *SQLiteDialect) MigrationsSubdir() string {
	return "sqlite"
}

func (d *SQLiteDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS migrations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	filename TEXT UNIQUE NOT NULL,
	executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`
}

func (d *SQLiteDialect) InsertIgnoreQuery(table string, columns []string) string {
	return "INSERT OR IGNORE INTO " + insertColumns(table, columns)
}
