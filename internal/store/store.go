package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	// PostgreSQL driver, selected by postgres:// DSNs.
	_ "github.com/lib/pq"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

func init() {
	// sqlx only knows the CGO driver's name.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Store holds the database handle and provides access to repositories.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to dsn and runs the schema migration. A postgres:// or
// postgresql:// DSN selects PostgreSQL; anything else is a SQLite path.
func Open(dsn string) (*Store, error) {
	driver := "sqlite"
	if IsPostgresDSN(dsn) {
		driver = "postgres"
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == "sqlite" {
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	} else if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := migrate(db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// IsPostgresDSN reports whether dsn addresses a PostgreSQL server.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// DB returns the underlying handle for raw queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Driver returns "sqlite" or "postgres".
func (s *Store) Driver() string {
	return s.driver
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ResultRepo returns the result repository backed by this store.
func (s *Store) ResultRepo() ResultRepo {
	return &resultRepo{db: s.db}
}

// ProfileRepo returns the profile repository backed by this store.
func (s *Store) ProfileRepo() ProfileRepo {
	return &profileRepo{db: s.db}
}

// EventRepo returns the LLM event repository backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db}
}

// SnapshotKV returns a key-value table suitable for session snapshots.
func (s *Store) SnapshotKV() *SnapshotKV {
	return &SnapshotKV{db: s.db}
}

// applyPragmas configures SQLite for single-user use.
func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database DSN in priority order:
// 1. EXAMPREP_DB environment variable
// 2. $XDG_DATA_HOME/examprep/examprep.db
// 3. ~/.local/share/examprep/examprep.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("EXAMPREP_DB"); p != "" {
		if IsPostgresDSN(p) {
			return p, nil
		}
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "examprep", "examprep.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
