package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"langcore/internal/entity"
	"langcore/internal/logging"
)

// Store is a single project's configuration-entity database. A project only
// ever has one writer (the index build), so the connection pool is capped
// at one connection the way the teacher's LocalStore pins sqlite to a
// single connection to avoid interleaved writers on one file.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the sqlite database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cache: create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.Get(logging.CategoryCache).Warn("failed to set journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.Get(logging.CategoryCache).Warn("failed to set busy_timeout: %v", err)
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

// Close releases the underlying sqlite connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceEntities atomically swaps the store's full entity set: configuration
// entities are replaced as a whole on rebuild, never patched in place.
func (s *Store) ReplaceEntities(entities []*entity.Entity) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("cache: begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM entities`); err != nil {
		return fmt.Errorf("cache: clear entities: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO entities(id, qualified_name, kind, type, data) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("cache: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entities {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("cache: marshal entity %s: %w", e.ID, err)
		}
		if _, err := stmt.Exec(e.ID, e.QualifiedName, string(e.Kind), string(e.Type), data); err != nil {
			return fmt.Errorf("cache: insert entity %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cache: commit: %w", err)
	}
	logging.Get(logging.CategoryCache).Info("replaced %d entities in %s", len(entities), s.path)
	return nil
}

// LoadEntities returns every entity currently in the store, in qualified-name
// order.
func (s *Store) LoadEntities() ([]*entity.Entity, error) {
	rows, err := s.db.Query(`SELECT data FROM entities ORDER BY qualified_name`)
	if err != nil {
		return nil, fmt.Errorf("cache: query entities: %w", err)
	}
	defer rows.Close()

	var out []*entity.Entity
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("cache: scan entity: %w", err)
		}
		var e entity.Entity
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("cache: unmarshal entity: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cache: iterate entities: %w", err)
	}
	return out, nil
}

// EntityCounts returns the number of stored entities per Kind, used to
// populate the project manifest.
func (s *Store) EntityCounts() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT kind, COUNT(*) FROM entities GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("cache: count entities: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("cache: scan count: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}
