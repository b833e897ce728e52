package billstore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

var remoteSchemes = []string{"libsql://", "https://", "http://", "wss://", "ws://"}

func isRemote(dsn string) bool {
	for _, scheme := range remoteSchemes {
		if strings.HasPrefix(dsn, scheme) {
			return true
		}
	}
	return false
}

func wrapOpen(err error) error {
	return fmt.Errorf("open bill store: %w", err)
}

// Open opens the database at dsn and applies the schema. Remote dsns go
// through libsql, anything else is a local sqlite file (or ":memory:").
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	if isRemote(dsn) {
		db, err = sql.Open("libsql", dsn)
	} else {
		db, err = openSqlite(dsn)
	}
	if err != nil {
		return nil, wrapOpen(err)
	}

	err = Migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, wrapOpen(err)
	}
	return db, nil
}

func openSqlite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// sqlite does not handle concurrent writers, a single connection also
	// keeps ":memory:" databases alive between queries
	db.SetMaxOpenConns(1)
	if path != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// Migrate applies Schema statement by statement, every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(Schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		_, err := db.ExecContext(ctx, stmt)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
