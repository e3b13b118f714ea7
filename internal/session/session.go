// Package session keeps the review session (loaded records, notes and
// photos) in a private SQLite database that lives only as long as the
// process unless a file DSN is configured.
package session

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS session (
	id           TEXT PRIMARY KEY,
	source       TEXT NOT NULL DEFAULT '',
	sheet_name   TEXT NOT NULL DEFAULT '',
	header       TEXT NOT NULL DEFAULT '[]',
	notes_column INTEGER NOT NULL DEFAULT 0,
	loaded_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS records (
	row_idx        INTEGER PRIMARY KEY,
	id             TEXT NOT NULL,
	case_id        TEXT NOT NULL DEFAULT '',
	name           TEXT NOT NULL DEFAULT '',
	mother         TEXT NOT NULL DEFAULT '',
	birth_date     TEXT NOT NULL DEFAULT '',
	national_id    TEXT NOT NULL DEFAULT '',
	street         TEXT NOT NULL DEFAULT '',
	house_number   TEXT NOT NULL DEFAULT '',
	district       TEXT NOT NULL DEFAULT '',
	regime         TEXT NOT NULL DEFAULT '',
	offense        TEXT NOT NULL DEFAULT '',
	classification TEXT NOT NULL DEFAULT '',
	cells          TEXT NOT NULL DEFAULT '[]',
	search         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_records_id ON records(id);
CREATE INDEX IF NOT EXISTS idx_records_name ON records(name, row_idx);

CREATE TABLE IF NOT EXISTS annotations (
	id         TEXT PRIMARY KEY,
	notes      TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS photos (
	id           TEXT PRIMARY KEY,
	content_type TEXT NOT NULL,
	width        INTEGER NOT NULL DEFAULT 0,
	height       INTEGER NOT NULL DEFAULT 0,
	data         BLOB NOT NULL,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store wraps a sql.DB with session-specific operations.
type Store struct {
	conn *sql.DB
}

// Open opens the session database and applies the schema. An empty dsn opens
// a private in-memory database; anything else is treated as a file path.
func Open(dsn string) (*Store, error) {
	memory := strings.TrimSpace(dsn) == ""
	if memory {
		dsn = "file:session-" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	} else {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	}
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("session: open db: %w", err)
	}
	if memory {
		// The database disappears with its last connection.
		conn.SetMaxOpenConns(1)
		conn.SetConnMaxLifetime(0)
		conn.SetConnMaxIdleTime(0)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
