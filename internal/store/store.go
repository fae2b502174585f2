package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/roach88/ensure-schema/internal/schema"
)

// Supported database/sql driver names.
const (
	DriverMattn   = "sqlite3" // github.com/mattn/go-sqlite3 (CGO)
	DriverModernc = "sqlite"  // modernc.org/sqlite (pure Go)
)

// DefaultBusyTimeoutMillis is applied when Config.BusyTimeoutMillis is zero.
const DefaultBusyTimeoutMillis = 5000

// Config selects the database to open.
type Config struct {
	// Path is the SQLite database file, or ":memory:".
	Path string

	// Driver is DriverMattn or DriverModernc. Empty means DriverMattn.
	Driver string

	// WAL switches the journal to write-ahead logging.
	WAL bool

	// BusyTimeoutMillis is how long to wait on a locked database.
	BusyTimeoutMillis int

	// ReadOnly leaves the file untouched: journal pragmas are skipped and a
	// missing file is never created. Dry runs and history reads set it.
	ReadOnly bool
}

// memoryPath names SQLite's per-connection in-memory database.
const memoryPath = ":memory:"

// Store is a schema.DB backed by SQLite.
type Store struct {
	db *sqlx.DB
}

var _ schema.DB = (*Store)(nil)

// Open connects to the database described by cfg and applies pragmas.
//
// The connection pool is limited to a single connection: convergence is
// strictly sequential and ":memory:" databases are per-connection.
func Open(cfg Config) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverMattn
	}
	if driver != DriverMattn && driver != DriverModernc {
		return nil, fmt.Errorf("unsupported driver %q: must be %q or %q", driver, DriverMattn, DriverModernc)
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, cfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return &Store{db: db}, nil
}

// dataSource returns the path to connect to. A read-only open of a file that
// does not exist yet reads an empty in-memory database instead.
func dataSource(cfg Config) (string, error) {
	if !cfg.ReadOnly || cfg.Path == memoryPath {
		return cfg.Path, nil
	}
	_, err := os.Stat(cfg.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return memoryPath, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat database: %w", err)
	}
	return cfg.Path, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sqlx.DB.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Query runs a check query. Callers are responsible for closing the rows.
func (s *Store) Query(ctx context.Context, query string) (schema.Rows, error) {
	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Exec runs a corrective statement, discarding its result.
func (s *Store) Exec(ctx context.Context, statement string) error {
	_, err := s.db.ExecContext(ctx, statement)
	return err
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sqlx.DB, cfg Config) error {
	timeout := cfg.BusyTimeoutMillis
	if timeout == 0 {
		timeout = DefaultBusyTimeoutMillis
	}

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", timeout),
		"PRAGMA foreign_keys = ON",
	}
	if cfg.WAL && !cfg.ReadOnly {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL")
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// pragma returns the current value of a pragma as text.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.Get(&value, "PRAGMA "+name); err != nil {
		return "", fmt.Errorf("failed to query %s: %w", name, err)
	}
	return value, nil
}
