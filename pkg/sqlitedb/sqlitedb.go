// Package sqlitedb opens embedded SQLite databases using the pure Go
// modernc.org/sqlite driver.
package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// Sentinel errors for sqlitedb package operations
var (
	ErrDatabaseOpen       = errors.New("failed to open sqlite database")
	ErrDatabaseConnection = errors.New("failed to connect to sqlite database")
)

// Open opens (creating if necessary) the single-file database at path with
// settings suited for a small service: WAL journaling so readers never block
// the writer, a busy timeout instead of immediate SQLITE_BUSY failures, and
// foreign keys on.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := "file:" + path + "?" + url.Values{
		"_pragma": []string{
			"journal_mode(WAL)",
			"busy_timeout(5000)",
			"foreign_keys(1)",
		},
	}.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOpen, err)
	}

	// SQLite allows a single writer; a pool of one connection avoids
	// SQLITE_BUSY between our own connections.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrDatabaseConnection, err)
	}

	return db, nil
}
