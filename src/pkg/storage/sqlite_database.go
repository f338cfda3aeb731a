package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"powertree/local-app/src/pkg/log"
)

// schemaVersion is stored in PRAGMA user_version. Databases written by a
// newer schema are refused.
const schemaVersion = 1

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// SQLiteDatabase implements the Database interface for SQLite
type SQLiteDatabase struct {
	BaseDatabase
	path string
}

// sqliteDSN appends the connection options understood by go-sqlite3.
func sqliteDSN(path string) string {
	opts := url.Values{}
	opts.Set("_busy_timeout", "5000")
	opts.Set("_foreign_keys", "on")
	if path != MemoryDSN {
		opts.Set("_journal_mode", "WAL")
		opts.Set("_synchronous", "NORMAL")
	}
	return "file:" + path + "?" + opts.Encode()
}

// Open opens a connection to the SQLite database file at path, creating
// its directory when needed.
func (s *SQLiteDatabase) Open(path string) error {
	ctx := context.Background()
	s.logger.Info(ctx, "Opening SQLite database", log.Fields{"dbPath": filepath.Base(path)})

	if path != MemoryDSN {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			s.logger.Error(ctx, "Failed to create database directory", log.Fields{"error": err, "directory": dir})
			return fmt.Errorf("failed to create database directory '%s': %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// one connection, so an in-memory database and open transactions are
	// seen by every query
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		s.logger.Error(ctx, "Failed to verify database connection", log.Fields{"error": err})
		return fmt.Errorf("failed to verify database connection: %w", err)
	}

	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		db.Close()
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > schemaVersion {
		db.Close()
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}
	if version < schemaVersion {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			db.Close()
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}

	s.db = db
	s.path = path
	s.logger.Info(ctx, "SQLite database opened", log.Fields{"schemaVersion": schemaVersion})
	return nil
}

// Close rolls back a pending transaction and closes the connection.
func (s *SQLiteDatabase) Close() error {
	if s.tx != nil {
		s.tx.Rollback()
		s.tx = nil
	}
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		s.logger.Error(context.Background(), "Failed to close SQLite database", log.Fields{"error": err, "dbPath": filepath.Base(s.path)})
		return fmt.Errorf("failed to close SQLite database: %w", err)
	}
	return nil
}
