package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrNotExist is returned by Open and OpenReadOnly when the database file is missing.
var ErrNotExist = errors.New("database does not exist")

// Store wraps a connection to one of the Application's SQLite database files.
type Store struct {
	db *sql.DB
}

// New creates a Store for dbPath, creating the file if it does not exist.
// Use ":memory:" for in-memory databases (useful for testing).
func New(dbPath string) (*Store, error) {
	if dbPath == ":memory:" {
		return open(dbPath, dbPath)
	}
	return open(fileDSN(dbPath, "rwc"), dbPath)
}

// Open opens an existing database for reading and writing.
// It never creates the file; a missing file yields ErrNotExist.
func Open(dbPath string) (*Store, error) {
	if !Exists(dbPath) {
		return nil, fmt.Errorf("%s: %w", dbPath, ErrNotExist)
	}
	return open(fileDSN(dbPath, "rw"), dbPath)
}

// OpenReadOnly opens an existing database with a read-only connection.
func OpenReadOnly(dbPath string) (*Store, error) {
	if !Exists(dbPath) {
		return nil, fmt.Errorf("%s: %w", dbPath, ErrNotExist)
	}
	return open(fileDSN(dbPath, "ro"), dbPath)
}

// Exists reports whether dbPath names an existing regular file.
func Exists(dbPath string) bool {
	info, err := os.Stat(dbPath)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// uriEscaper escapes the characters SQLite's URI parser treats specially in
// the path component of a file: URI.
var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// fileDSN builds a file: URI for dbPath opened with the given SQLite mode
// (ro, rw or rwc).
func fileDSN(dbPath, mode string) string {
	return "file:" + uriEscaper.Replace(dbPath) + "?mode=" + mode
}

func open(dsn, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}

	// One connection keeps transactions and PRAGMAs on the same handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Journal mode is left alone: the Application owns these files.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying database connection for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}
