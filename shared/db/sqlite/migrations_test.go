package sqlite

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
)

func connectTestDB(t *testing.T, path string) *SQLiteDB {
	database := NewSQLiteDB(&SQLiteConfig{Path: path})
	if err := database.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return database
}

func TestRunMigrations(t *testing.T) {
	database := connectTestDB(t, filepath.Join(t.TempDir(), "test.db"))
	defer database.Close()

	db := database.DB()

	objects := []struct {
		kind string
		name string
	}{
		{"table", "schema_migrations"},
		{"table", "posts"},
		{"index", "idx_posts_slug"},
		{"index", "idx_posts_publish_creation_time"},
		{"index", "idx_posts_title"},
		{"index", "idx_posts_tags"},
	}

	for _, obj := range objects {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?", obj.kind, obj.name).Scan(&count)
		if err != nil {
			t.Fatalf("Failed to check %s %s: %v", obj.kind, obj.name, err)
		}
		if count != 1 {
			t.Errorf("%s %s not created", obj.kind, obj.name)
		}
	}

	var version int
	var name string
	err := db.QueryRow("SELECT version, name FROM schema_migrations WHERE version = 1").Scan(&version, &name)
	if err != nil {
		t.Fatalf("Failed to query schema_migrations: %v", err)
	}
	if name != "create_posts_table" {
		t.Errorf("name = %q, want %q", name, "create_posts_table")
	}

	var latest int
	if err := db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&latest); err != nil {
		t.Fatalf("Failed to query latest version: %v", err)
	}
	if latest != len(migrations) {
		t.Errorf("latest version = %d, want %d", latest, len(migrations))
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	database := connectTestDB(t, dbPath)
	database.Close()

	database = connectTestDB(t, dbPath)
	defer database.Close()

	var count int
	err := database.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema_migrations: %v", err)
	}
	if count != len(migrations) {
		t.Errorf("migrations recorded %d times, want %d", count, len(migrations))
	}
}

func TestPostsTableSchema(t *testing.T) {
	database := connectTestDB(t, filepath.Join(t.TempDir(), "test.db"))
	defer database.Close()

	db := database.DB()

	_, err := db.Exec(`
		INSERT INTO posts (id, slug, title, author, tags, body, creation_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, "001", "Test-Post", "Test Post", "admin", "Go", "<p>body</p>", 1538867279)
	if err != nil {
		t.Fatalf("Failed to insert post: %v", err)
	}

	var changeTime sql.NullInt64
	var publish bool
	err = db.QueryRow("SELECT change_time, publish FROM posts WHERE id = ?", "001").Scan(&changeTime, &publish)
	if err != nil {
		t.Fatalf("Failed to query post: %v", err)
	}

	if changeTime.Valid {
		t.Error("change_time should be NULL until the first edit")
	}
	if publish {
		t.Error("publish should default to false")
	}

	_, err = db.Exec(`
		INSERT INTO posts (id, slug, title, author, tags, body, creation_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, "002", "Test-Post", "Test Post", "admin", "Go", "<p>other</p>", 1538867280)
	if err == nil || !strings.Contains(err.Error(), "UNIQUE") {
		t.Errorf("duplicate slug insert error = %v, want UNIQUE constraint failure", err)
	}
}
