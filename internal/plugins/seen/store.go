package seen

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS seen (
	id       TEXT PRIMARY KEY,
	url      TEXT NOT NULL UNIQUE,
	title    TEXT NOT NULL DEFAULT '',
	task     TEXT NOT NULL DEFAULT '',
	added_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_seen_task ON seen(task);
`

// Store persists seen entry URLs in a SQLite database.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) a SQLite database at dbPath and ensures the
// seen table exists. The caller is responsible for calling Close.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1) // prevent SQLITE_BUSY
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// Has reports whether url has been recorded by a previous run.
func (s *Store) Has(url string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM seen WHERE url = ?`, url).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query seen: %w", err)
	}
	return n > 0, nil
}

// Add records url as seen. Re-adding a known url is a no-op.
func (s *Store) Add(url, title, taskName string) error {
	_, err := s.db.Exec(`
		INSERT INTO seen (id, url, title, task, added_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(url) DO NOTHING`,
		uuid.NewString(), url, title, taskName, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert seen: %w", err)
	}
	return nil
}

// Forget removes url from the store, so it will be processed again.
func (s *Store) Forget(url string) error {
	if _, err := s.db.Exec(`DELETE FROM seen WHERE url = ?`, url); err != nil {
		return fmt.Errorf("delete seen: %w", err)
	}
	return nil
}
