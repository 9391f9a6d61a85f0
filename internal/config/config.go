package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "quill.yaml"

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
	DriverBadger = "badger"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
	Site   SiteConfig   `yaml:"site"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	BaseURL         string        `yaml:"base_url"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// Mode is the gin mode: debug, release or test
	Mode string `yaml:"mode"`
}

type StoreConfig struct {
	Driver string       `yaml:"driver"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	Mongo  MongoConfig  `yaml:"mongo"`
	Badger BadgerConfig `yaml:"badger"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type BadgerConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

type AuthConfig struct {
	Realm string `yaml:"realm"`
	Users []User `yaml:"users"`
}

// User is an admin account; PasswordHash is a bcrypt hash as printed by `quill hash-password`
type User struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Format is "json" or "console"
	Format string `yaml:"format"`
}

type SiteConfig struct {
	Title string `yaml:"title"`
	About string `yaml:"about"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 5 * time.Second,
			Mode:            "release",
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			SQLite: SQLiteConfig{Path: "./quill.db"},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost/my_database",
				Database:   "my_database",
				Collection: "blog",
			},
			Badger: BadgerConfig{Path: "./quill-badger"},
		},
		Auth: AuthConfig{Realm: "Authentication Required"},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Site: SiteConfig{
			Title: "quill",
			About: "Whatever you want to write :)",
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file at path is not an error unless required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !required:
	default:
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("QUILL_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid QUILL_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}

	overrides := []struct {
		key string
		dst *string
	}{
		{"QUILL_BASE_URL", &c.Server.BaseURL},
		{"QUILL_STORE_DRIVER", &c.Store.Driver},
		{"SQLITE_DB_PATH", &c.Store.SQLite.Path},
		{"MONGO_URI", &c.Store.Mongo.URI},
		{"QUILL_BADGER_PATH", &c.Store.Badger.Path},
		{"QUILL_LOG_LEVEL", &c.Log.Level},
	}
	for _, s := range overrides {
		if v, ok := lookup(s.key); ok && v != "" {
			*s.dst = v
		}
	}

	user, hasUser := lookup("QUILL_ADMIN_USER")
	hash, hasHash := lookup("QUILL_ADMIN_PASSWORD_HASH")
	if hasUser && hasHash && user != "" && hash != "" {
		c.Auth.Users = append(c.Auth.Users, User{Username: user, PasswordHash: hash})
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	switch c.Store.Driver {
	case DriverSQLite, DriverMongo, DriverBadger:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	for i, u := range c.Auth.Users {
		if u.Username == "" || u.PasswordHash == "" {
			return fmt.Errorf("auth user %d needs both username and password_hash", i)
		}
	}

	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
