package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dfryer1193/quill/blog/domain"
	"github.com/dfryer1193/quill/blog/persistence"
	"github.com/dfryer1193/quill/blog/persistence/kvstore"
	"github.com/dfryer1193/quill/blog/persistence/mongostore"
	"github.com/dfryer1193/quill/internal/config"
	"github.com/dfryer1193/quill/shared/db/sqlite"
)

const mongoConnectTimeout = 10 * time.Second

// store is an opened post store together with its health check and release func
type store struct {
	posts domain.PostRepository
	ping  func(ctx context.Context) error
	close func() error
}

// openStore opens the post store selected by cfg.Driver
func openStore(ctx context.Context, cfg config.StoreConfig) (*store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: cfg.SQLite.Path})
		if err := database.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
		}
		return &store{
			posts: persistence.NewPostRepository(database.DB()),
			ping:  database.Ping,
			close: database.Close,
		}, nil

	case config.DriverMongo:
		connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
		defer cancel()

		repo, err := mongostore.Connect(connectCtx, mongostore.Config{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
		if err != nil {
			return nil, err
		}
		return &store{
			posts: repo,
			ping:  repo.Ping,
			close: func() error { return repo.Close(context.Background()) },
		}, nil

	case config.DriverBadger:
		repo, err := kvstore.Open(kvstore.Config{Path: cfg.Badger.Path, InMemory: cfg.Badger.InMemory})
		if err != nil {
			return nil, err
		}
		return &store{posts: repo, ping: repo.Ping, close: repo.Close}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
