package database

import (
	"database/sql"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLDialect targets MySQL and MariaDB through go-sql-driver/mysql.
type MySQLDialect struct{}

func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) Name() string       { return "mysql" }
func (d *MySQLDialect) DriverName() string { return "mysql" }

// DSN adds parseTime=true unless the URL already decides it; without it
// DATETIME columns scan as []byte.
func (d *MySQLDialect) DSN(config DialectConfig) string {
	switch {
	case strings.Contains(config.URL, "parseTime="):
		return config.URL
	case strings.Contains(config.URL, "?"):
		return config.URL + "&parseTime=true"
	default:
		return config.URL + "?parseTime=true"
	}
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	return query
}

func (d *MySQLDialect) SupportsLastInsertId() bool {
	return true
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	defaultPool.apply(db)

	_, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1")
	return err
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS migrations (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	filename VARCHAR(255) UNIQUE NOT NULL,
	executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
)`
}

func (d *MySQLDialect) InsertIgnoreQuery(table string, columns []string) string {
	return "INSERT IGNORE INTO " + insertColumns(table, columns)
}
