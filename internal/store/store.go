package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and creates the schema.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the schema if it is absent. There is a single schema
// version; user_version only records that the seed has run.
func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if err := s.createSchema(); err != nil {
		return err
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) createSchema() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS contacts (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name        TEXT NOT NULL,
		last_name         TEXT NOT NULL DEFAULT '',
		mobile_number     TEXT NOT NULL DEFAULT '',
		email             TEXT NOT NULL DEFAULT '',
		relation_type     TEXT NOT NULL DEFAULT 'Other',
		birthday          TEXT NOT NULL DEFAULT '',
		profile_image_uri TEXT NOT NULL DEFAULT '',
		notes             TEXT NOT NULL DEFAULT '',
		is_private        INTEGER NOT NULL DEFAULT 0,
		created_at        TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_contacts_private ON contacts(is_private);

	CREATE TABLE IF NOT EXISTS interactions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		contact_id  INTEGER NOT NULL REFERENCES contacts(id),
		type        TEXT NOT NULL,
		notes       TEXT NOT NULL DEFAULT '',
		date        TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		location    TEXT NOT NULL DEFAULT '',
		transcript  TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_interactions_contact ON interactions(contact_id);
	CREATE INDEX IF NOT EXISTS idx_interactions_date    ON interactions(date);

	CREATE TABLE IF NOT EXISTS media (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		contact_id      INTEGER NOT NULL REFERENCES contacts(id),
		interaction_id  INTEGER REFERENCES interactions(id),
		type            TEXT NOT NULL,
		uri             TEXT NOT NULL,
		mime_type       TEXT NOT NULL DEFAULT '',
		file_name       TEXT NOT NULL DEFAULT '',
		is_private      INTEGER NOT NULL DEFAULT 0,
		created_at      TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_media_contact     ON media(contact_id);
	CREATE INDEX IF NOT EXISTS idx_media_interaction ON media(interaction_id);

	CREATE TABLE IF NOT EXISTS reminders (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		contact_id         INTEGER REFERENCES contacts(id),
		title              TEXT NOT NULL,
		date               TEXT NOT NULL,
		calendar_event_id  TEXT NOT NULL DEFAULT '',
		completed          INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_reminders_date ON reminders(date);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('theme_mode',         'system'),
		('biometric_enabled',  'true'),
		('call_log_auto_sync', 'false'),
		('call_log_last_sync', '0'),
		('vault_autolock',     '300');
	`
	_, err := s.db.Exec(ddl)
	return err
}
