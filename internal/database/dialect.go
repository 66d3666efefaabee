package database

import (
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// Dialect hides the differences between the supported SQL engines. Queries
// are written once with ? placeholders and rewritten per engine.
type Dialect interface {
	// Name is recorded in backups and schema logs.
	Name() string
	DriverName() string
	DSN(config DialectConfig) string

	// RewriteQuery maps ? placeholders to the engine's own syntax.
	RewriteQuery(query string) string

	// SupportsLastInsertId is false where inserts need RETURNING id.
	SupportsLastInsertId() bool

	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir names the directory under migrations/ for this engine.
	MigrationsSubdir() string
	CreateMigrationsTableQuery() string

	// InsertIgnoreQuery builds an insert that leaves an existing row with the
	// same key untouched. Link creation relies on it so the first grant wins.
	InsertIgnoreQuery(table string, columns []string) string
}

// DialectConfig carries Path for sqlite and URL for the server engines.
type DialectConfig struct {
	Path string
	URL  string
}

// poolSettings are the database/sql pool limits applied on open.
type poolSettings struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	maxIdleTime time.Duration
}

// defaultPool applies to every engine.
var defaultPool = poolSettings{maxOpen: 25, maxIdle: 5, maxLifetime: 5 * time.Minute, maxIdleTime: time.Minute}

func (p poolSettings) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.maxOpen)
	db.SetMaxIdleConns(p.maxIdle)
	db.SetConnMaxLifetime(p.maxLifetime)
	db.SetConnMaxIdleTime(p.maxIdleTime)
}

// numberPlaceholders turns ? into $1, $2, ... leaving quoted text alone.
func numberPlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	var quote rune
	for _, r := range query {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func insertColumns(table string, columns []string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return table + " (" + strings.Join(columns, ", ") + ") VALUES (" + marks + ")"
}
