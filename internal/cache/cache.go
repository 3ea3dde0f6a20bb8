// Package cache implements an incremental-build cache: a small sqlite
// table mapping a source file's content hash to the build ID of its
// last successful compile, so a driver invocation can skip re-emitting
// modules for a source that hasn't changed. Modeled on the plain
// database/sql usage in the teacher pack's closure-table store
// (parameterized Exec/Query calls against a *sql.DB), backed by
// modernc.org/sqlite's pure-Go driver rather than a cgo binding.
package cache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Cache wraps a sqlite-backed store of source-hash -> build-id entries.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures its schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: opening %s: %w", path, err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS builds (
			source_hash TEXT PRIMARY KEY,
			build_id    TEXT NOT NULL,
			modules     TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: creating schema: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// Lookup returns the build ID and comma-joined module list recorded for
// sourceHash, and whether an entry was found.
func (c *Cache) Lookup(sourceHash string) (buildID string, modules string, ok bool, err error) {
	row := c.db.QueryRow(`SELECT build_id, modules FROM builds WHERE source_hash = ?`, sourceHash)
	err = row.Scan(&buildID, &modules)
	if err == sql.ErrNoRows {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("cache: lookup: %w", err)
	}
	return buildID, modules, true, nil
}

// Record upserts the build ID and module list produced for sourceHash.
func (c *Cache) Record(sourceHash, buildID, modules string) error {
	_, err := c.db.Exec(`
		INSERT INTO builds (source_hash, build_id, modules) VALUES (?, ?, ?)
		ON CONFLICT(source_hash) DO UPDATE SET build_id = excluded.build_id, modules = excluded.modules
	`, sourceHash, buildID, modules)
	if err != nil {
		return fmt.Errorf("cache: record: %w", err)
	}
	return nil
}
