package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// migration represents a single database migration
type migration struct {
	version int
	name    string
	up      string
}

// migrations is the ordered list of all database migrations
// Each migration should be idempotent and safe to run multiple times
var migrations = []migration{
	{
		version: 1,
		name:    "create_posts_table",
		up: `
			CREATE TABLE IF NOT EXISTS posts (
				id TEXT PRIMARY KEY,
				slug TEXT NOT NULL,
				title TEXT NOT NULL,
				author TEXT NOT NULL,
				tags TEXT NOT NULL,
				body TEXT NOT NULL,
				creation_time INTEGER NOT NULL,
				change_time INTEGER,
				publish INTEGER NOT NULL DEFAULT 0
			);

			CREATE UNIQUE INDEX IF NOT EXISTS idx_posts_slug ON posts(slug);
		`,
	},
	{
		version: 2,
		name:    "create_posts_query_indexes",
		up: `
			CREATE INDEX IF NOT EXISTS idx_posts_publish_creation_time
			ON posts(publish, creation_time DESC);

			CREATE INDEX IF NOT EXISTS idx_posts_title ON posts(title);

			CREATE INDEX IF NOT EXISTS idx_posts_tags ON posts(tags);
		`,
	},
}

// runMigrations executes all pending migrations
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	currentVersion := 0
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", m.version, err)
		}

		if _, err = tx.Exec(m.up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d (%s): %w", m.version, m.name, err)
		}

		_, err = tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			m.version,
			m.name,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}

		log.Debug().Int("version", m.version).Str("name", m.name).Msg("Applied migration")
	}

	return nil
}
