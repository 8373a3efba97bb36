package classindex

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chazu/tern/interop"
	"github.com/chazu/tern/jvm"
)

// Store is a persistent class index in SQLite, so large classpaths are
// scanned once and reused across compilations. Member lists are stored as
// canonical CBOR blobs keyed by class name.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// OpenStore opens (creating if needed) a class index database.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening class index %s: %w", dbPath, err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS classes (
		name    TEXT PRIMARY KEY,
		members BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating class index schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores (or replaces) a class's member list.
func (s *Store) Put(className string, members []*interop.MemberSignature) error {
	blob, err := interop.MarshalMembers(members)
	if err != nil {
		return fmt.Errorf("encoding members of %s: %w", className, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(
		`INSERT INTO classes (name, members) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET members = excluded.members`,
		className, blob)
	if err != nil {
		return fmt.Errorf("storing class %s: %w", className, err)
	}
	return nil
}

// Lookup implements interop.Catalog.
func (s *Store) Lookup(className string) ([]*interop.MemberSignature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var blob []byte
	err := s.db.QueryRow(`SELECT members FROM classes WHERE name = ?`, className).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", interop.ErrClassNotFound, jvm.ExternalName(className))
	}
	if err != nil {
		return nil, fmt.Errorf("querying class %s: %w", className, err)
	}
	return interop.UnmarshalMembers(blob)
}

// SaveIndex writes every class of an in-memory index into the store in
// one transaction.
func (s *Store) SaveIndex(ix *Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting index save: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO classes (name, members) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET members = excluded.members`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing index save: %w", err)
	}
	defer stmt.Close()

	for _, name := range ix.Classes() {
		members := ix.classes[name]
		blob, err := interop.MarshalMembers(members)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encoding members of %s: %w", name, err)
		}
		if _, err := stmt.Exec(name, blob); err != nil {
			tx.Rollback()
			return fmt.Errorf("storing class %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// Classes returns the stored class names, sorted.
func (s *Store) Classes() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT name FROM classes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing classes: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
