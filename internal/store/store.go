package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema
// 1 - Added index on pushes.head_changeset for push head lookups
const currentSchemaVersion = 1

// FileName is the name of the index database inside the .git directory
const FileName = "pushlog.db"

// Store provides durable storage for the pushlog index.
// Uses SQLite with WAL mode so readers see a consistent snapshot while a
// writer commits, including readers in other processes.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// Every pooled connection is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//   - Immediate transactions, so a writer takes the lock up front
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, pushlogerrors.NewStorageError("open database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, pushlogerrors.NewStorageError("connect to database", err)
	}

	// Push head iteration keeps a cursor open while callers run other queries,
	// so the pool must allow more than one connection.
	db.SetMaxIdleConns(2)

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, pushlogerrors.NewStorageError("apply schema", err)
	}

	return &Store{db: db}, nil
}

// dsn builds the connection string. Pragmas go in the DSN because they are
// per connection and database/sql may open several.
func dsn(path string) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_synchronous", "NORMAL")
	params.Set("_busy_timeout", "5000")
	params.Set("_foreign_keys", "on")
	params.Set("_txlock", "immediate")
	return "file:" + path + "?" + params.Encode()
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_pushes_head
		ON pushes(head_changeset)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// withTx runs fn inside a transaction, committing on success.
func (s *Store) withTx(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return pushlogerrors.NewStorageError(op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return pushlogerrors.NewStorageError(op, err)
	}
	if err := tx.Commit(); err != nil {
		return pushlogerrors.NewStorageError(op, err)
	}
	return nil
}

// Stats summarizes the index contents
type Stats struct {
	Trees      int
	Pushes     int
	Changesets int
	Bugs       int
	Refs       int
}

// Stats counts rows in each table
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM trees),
			(SELECT COUNT(*) FROM pushes),
			(SELECT COUNT(DISTINCT changeset) FROM changeset_pushes),
			(SELECT COUNT(DISTINCT bug) FROM changeset_bugs),
			(SELECT COUNT(*) FROM remote_refs)
	`).Scan(&st.Trees, &st.Pushes, &st.Changesets, &st.Bugs, &st.Refs)
	if err != nil {
		return Stats{}, pushlogerrors.NewStorageError("stats", err)
	}
	return st, nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
