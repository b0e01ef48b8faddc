// Package journal records save attempts and terminal save failures in SQLite.
// It never stores document content, only metadata about each write.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS attempts (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	profile  TEXT NOT NULL DEFAULT '',
	file     TEXT NOT NULL DEFAULT '',
	cause    TEXT NOT NULL DEFAULT '',
	number   INTEGER NOT NULL DEFAULT 1,
	bytes    INTEGER NOT NULL DEFAULT 0,
	checksum TEXT NOT NULL DEFAULT '',
	ok       INTEGER NOT NULL DEFAULT 0,
	error    TEXT NOT NULL DEFAULT '',
	at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS failures (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	path     TEXT NOT NULL DEFAULT '',
	attempts INTEGER NOT NULL DEFAULT 0,
	error    TEXT NOT NULL DEFAULT '',
	at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_attempts_profile ON attempts(profile);
`

// Journal is the save-attempt log. Consumers depend on it rather than *DB.
type Journal interface {
	Record(e Entry) error
	RecordFailure(f Failure) error
	Recent(profile string, limit int) ([]Entry, error)
	Failures(limit int) ([]Failure, error)
	Stats(profile string) (Stats, error)
	Close() error
}

var _ Journal = (*DB)(nil)

// Entry is one save attempt.
type Entry struct {
	ID       int64     `json:"id"`
	Profile  string    `json:"profile"`
	File     string    `json:"file"`
	Trigger  string    `json:"trigger"`
	Number   int       `json:"number"`
	Bytes    int       `json:"bytes"`
	Checksum string    `json:"checksum"`
	OK       bool      `json:"ok"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

// Failure is a retry episode that gave up.
type Failure struct {
	ID       int64     `json:"id"`
	Path     string    `json:"path"`
	Attempts int       `json:"attempts"`
	Error    string    `json:"error"`
	At       time.Time `json:"at"`
}

// Stats summarises the attempts for one profile.
type Stats struct {
	Attempts    int        `json:"attempts"`
	Failed      int        `json:"failed"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
}

// DB wraps a sql.DB holding the journal tables.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("journal: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
