package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dfryer1193/quill/shared/db"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultPath is the default path for the SQLite database
	DefaultPath = "./quill.db"

	memoryPath = ":memory:"
)

type SQLiteConfig struct {
	Path string
}

// SQLiteDB implements the db.Database interface for SQLite
type SQLiteDB struct {
	dbPath string
	db     *sql.DB
}

// NewSQLiteDB creates a new SQLite database instance, falling back to DefaultPath
func NewSQLiteDB(cfg *SQLiteConfig) *SQLiteDB {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	return &SQLiteDB{
		dbPath: path,
	}
}

var _ db.Database = (*SQLiteDB)(nil)

// Connect opens a connection to the SQLite database and brings its schema up to date
func (s *SQLiteDB) Connect() error {
	if s.db != nil {
		return fmt.Errorf("database already connected")
	}

	conn, err := sql.Open("sqlite3", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to :memory: would otherwise see its own empty database
	if s.dbPath == memoryPath {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-64000", // 64MB
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	s.db = conn
	log.Info().Str("path", s.dbPath).Msg("Connected to SQLite database")

	return nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

// Ping reports whether the connection is still usable
func (s *SQLiteDB) Ping(ctx context.Context) error {
	if s.db == nil {
		return db.ErrNotConnected
	}
	return s.db.PingContext(ctx)
}

// DB returns the underlying *sql.DB instance
func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}

// Path returns the file the database is stored in
func (s *SQLiteDB) Path() string {
	return s.dbPath
}
