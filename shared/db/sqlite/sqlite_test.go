package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dfryer1193/quill/shared/db"
)

func TestNewSQLiteDB(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "explicit path",
			path: "/tmp/test.db",
			want: "/tmp/test.db",
		},
		{
			name: "default path",
			want: DefaultPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database := NewSQLiteDB(&SQLiteConfig{Path: tt.path})
			if database.Path() != tt.want {
				t.Errorf("Path() = %v, want %v", database.Path(), tt.want)
			}
		})
	}
}

func TestSQLiteDB_Connect(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	database := NewSQLiteDB(&SQLiteConfig{Path: dbPath})

	err := database.Connect()
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer database.Close()

	if database.DB() == nil {
		t.Error("DB() returned nil after Connect()")
	}

	err = database.Connect()
	if err == nil {
		t.Error("Connect() should return error when already connected")
	}
}

func TestSQLiteDB_ConnectInMemory(t *testing.T) {
	database := NewSQLiteDB(&SQLiteConfig{Path: ":memory:"})
	if err := database.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer database.Close()

	// Migrations and later queries must see the same in-memory database
	var count int
	err := database.DB().QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='posts'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to check posts table: %v", err)
	}
	if count != 1 {
		t.Errorf("posts table not visible on in-memory connection")
	}
}

func TestSQLiteDB_Close(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	database := NewSQLiteDB(&SQLiteConfig{Path: dbPath})

	if err := database.Close(); err != nil {
		t.Errorf("Close() without Connect() error = %v", err)
	}

	if err := database.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := database.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if database.DB() != nil {
		t.Error("DB() should return nil after Close()")
	}
}

func TestSQLiteDB_Ping(t *testing.T) {
	database := NewSQLiteDB(&SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	ctx := context.Background()

	if err := database.Ping(ctx); !errors.Is(err, db.ErrNotConnected) {
		t.Errorf("Ping() before Connect() error = %v, want %v", err, db.ErrNotConnected)
	}

	if err := database.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := database.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	if err := database.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := database.Ping(ctx); !errors.Is(err, db.ErrNotConnected) {
		t.Errorf("Ping() after Close() error = %v, want %v", err, db.ErrNotConnected)
	}
}

func TestSQLiteDB_InterfaceCompliance(t *testing.T) {
	var _ db.Database = (*SQLiteDB)(nil)
}
