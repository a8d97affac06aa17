// Package database keeps the index of generated landing pages in an
// embedded SQLite file. The rendered sites themselves live on disk under
// the data directory; this index records what was generated, with how many
// attempts, and where it was published.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// dbFileName is the index file kept inside the data directory.
const dbFileName = "launchpage.db"

// DB is the site index.
type DB struct {
	conn *sql.DB
	path string
}

// OpenDir opens the site index inside dataDir, creating the directory and
// the index file on first use.
func OpenDir(dataDir string) (*DB, error) {
	return Open(filepath.Join(dataDir, dbFileName))
}

// Open creates or opens the site index at the given file path.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening site index: %w", err)
	}

	// The CLI and the server may point at the same index file.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the index.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the index file path.
func (db *DB) Path() string {
	return db.path
}
