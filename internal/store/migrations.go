package store

import (
	"fmt"
)

func (s *Store) migrate() error {
	if err := s.migrateV1(); err != nil {
		return err
	}
	return s.migrateV2()
}

func (s *Store) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS implementation_refs (
		protocol_id     TEXT NOT NULL,
		implementation  TEXT NOT NULL,
		category        TEXT NOT NULL,
		domain          TEXT NOT NULL,
		member_key      TEXT NOT NULL,
		ordinal         INTEGER NOT NULL,
		owner           TEXT,
		repo            TEXT,
		commit_sha      TEXT,
		path            TEXT,
		line            INTEGER NOT NULL,
		PRIMARY KEY (protocol_id, implementation, category, domain, member_key, ordinal)
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO meta(key, value) VALUES ('schema_version', '1');
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute migration v1: %w", err)
	}

	return nil
}

// migrateV2 records which protocols have been indexed, so an index with no
// references is distinguishable from one that was never stored.
func (s *Store) migrateV2() error {
	var version string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	if err != nil || version >= "2" {
		return nil
	}

	schema := `
	CREATE TABLE IF NOT EXISTS indexed_protocols (
		protocol_id TEXT PRIMARY KEY,
		members     INTEGER NOT NULL,
		indexed_at  INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_refs_protocol ON implementation_refs(protocol_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute migration v2: %w", err)
	}

	if _, err := s.db.Exec(`INSERT OR REPLACE INTO meta(key, value) VALUES ('schema_version', '2')`); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}

	return nil
}
