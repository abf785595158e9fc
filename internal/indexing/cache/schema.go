// Package cache is the Project Index Store: a schema-versioned sqlite
// database holding configuration-derived entities for one project, plus the
// flat manifest and unified-index files written alongside it.
package cache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"langcore/internal/errkind"
)

// CurrentSchemaVersion is bumped whenever the entities table shape changes.
// A store opened against a database stamped with a different version is
// rejected outright rather than migrated in place — the store is rebuilt
// from the configuration directory instead, so there is nothing worth
// migrating.
const CurrentSchemaVersion = 1

func ensureSchema(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("cache: create schema_version table: %w", err)
	}

	var version int
	err := db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.Exec(`INSERT INTO schema_version(version) VALUES (?)`, CurrentSchemaVersion); err != nil {
			return fmt.Errorf("cache: stamp schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("cache: read schema version: %w", err)
	case version != CurrentSchemaVersion:
		return fmt.Errorf("cache: stored schema version %d, expected %d: %w", version, CurrentSchemaVersion, errkind.ErrCacheVersionMismatch)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS entities (
			id             TEXT PRIMARY KEY,
			qualified_name TEXT NOT NULL,
			kind           TEXT NOT NULL,
			type           TEXT NOT NULL,
			data           BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_entities_qualified_name ON entities(qualified_name);
	`)
	if err != nil {
		return fmt.Errorf("cache: create entities table: %w", err)
	}
	return nil
}
