package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"github.com/jmoiron/sqlx"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the database handle. All reads and writes go through a
// Session obtained from Session or InTx.
type Store struct {
	db           *sqlx.DB
	now          func() time.Time
	seedSubjects bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for created_at/updated_at columns.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithoutDefaultSubjects skips creating the starter subjects on a fresh
// database.
func WithoutDefaultSubjects() Option {
	return func(s *Store) { s.seedSubjects = false }
}

// pragmas are applied by the driver on every new pooled connection.
var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
}

// Open creates a new Store connected to the SQLite database at path.
// It applies recommended pragmas, runs auto-migration and seeds the
// singleton user row on first use.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: sqlx.NewDb(db, "sqlite"), now: time.Now, seedSubjects: true}
	for _, opt := range opts {
		opt(s)
	}

	ctx := context.Background()
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	if err := s.InTx(ctx, s.seedDefaults); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	return s, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	drv := entsql.OpenDB(dialect.SQLite, db)
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}

// buildDSN appends connection pragmas to a file path, keeping any query
// parameters the caller already supplied.
func buildDSN(path string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	q.Set("_txlock", "immediate")
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

// DB returns the underlying *sqlx.DB for raw queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Session returns a non-transactional session. Each statement runs in
// its own implicit transaction. Sessions are cheap; background workers
// take their own instead of sharing one.
func (s *Store) Session() *Session {
	return &Session{q: s.db, now: s.now}
}

// InTx runs fn inside a single transaction. The transaction commits when
// fn returns nil and rolls back otherwise, including on panic.
func (s *Store) InTx(ctx context.Context, fn func(tx *Session) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Session{q: tx, now: s.now}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. STUDYHALL_DB environment variable
// 2. $XDG_DATA_HOME/studyhall/studyhall.db
// 3. ~/.local/share/studyhall/studyhall.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("STUDYHALL_DB"); p != "" {
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

	p := filepath.Join(dataHome, "studyhall", "studyhall.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
