// Package store provides the SQLite-backed record store for daily entries and payout adjustments.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // register sqlite driver
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	entriesTable = "daily_entries"
	payoutsTable = "payout_adjustments"
)

// Error reports a failed store operation. It wraps the driver error so
// callers can tell storage failures apart from input validation failures.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: errors.WithStack(err)}
}

// Range limits list queries to dates within [From, To]. A zero bound is open.
type Range struct {
	From time.Time
	To   time.Time
}

// Counts reports how many records of each kind are stored.
type Counts struct {
	Entries int `json:"entries"`
	Payouts int `json:"payouts"`
}

// Store is the record store. A single *sql.DB gives read-after-write
// consistency within the process.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at dbPath and applies pending migrations.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, wrap("open", errors.Wrapf(err, "creating data dir %s", dir))
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, wrap("open", err)
	}
	// sqlite allows one writer; keep every statement on one connection
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, wrap("migrate", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return errors.Wrap(err, "set goose dialect")
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Wrap(err, "goose up")
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SchemaVersion returns the applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version_id), 0) FROM goose_db_version WHERE is_applied = 1").Scan(&v)
	return v, wrap("schema version", err)
}

// Counts returns the number of stored entries and payouts.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx,
		"SELECT (SELECT COUNT(*) FROM "+entriesTable+"), (SELECT COUNT(*) FROM "+payoutsTable+")",
	).Scan(&c.Entries, &c.Payouts)
	if err != nil {
		return Counts{}, wrap("counts", err)
	}
	return c, nil
}
