package database

import (
	"database/sql"
	"strconv"
	"strings"
)

// Dialect abstracts the differences between the supported SQL engines.
// Repositories write portable SQL with ? placeholders; the active dialect
// rewrites it for its engine and owns driver setup and migration bookkeeping.
type Dialect interface {
	// DriverName returns the driver name for sql.Open.
	DriverName() string

	// DSN builds the data source name from the connection config.
	DSN(config DialectConfig) string

	// RewriteQuery translates ? placeholders into the engine's syntax.
	RewriteQuery(query string) string

	// SupportsLastInsertId reports whether the driver implements
	// LastInsertId, or whether inserts need a RETURNING clause.
	SupportsLastInsertId() bool

	// ConfigureConnection applies engine-specific pool and pragma settings.
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir names the per-engine migrations directory.
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the DDL for the table that tracks
	// applied migrations.
	CreateMigrationsTableQuery() string

	// BoolValue renders a boolean literal for this engine.
	BoolValue(b bool) string
}

// DialectConfig carries the connection settings a dialect needs. SQLite
// reads Path; PostgreSQL and MySQL read URL.
type DialectConfig struct {
	Path string
	URL  string
}

// numberPlaceholders rewrites every ? into $1, $2, ... in order. Lesson and
// progress queries never embed literal question marks, so no quote tracking
// is needed.
func numberPlaceholders(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
