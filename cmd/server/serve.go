package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dfryer1193/quill/blog/application"
	"github.com/dfryer1193/quill/internal/auth"
	"github.com/dfryer1193/quill/internal/config"
	"github.com/dfryer1193/quill/internal/middleware"
	"github.com/dfryer1193/quill/internal/rest"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, args []string) error {
	path, required := configPath, true
	if path == "" {
		path, required = config.DefaultPath, false
	}

	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}

	if err := setupLogging(cfg.Log); err != nil {
		return err
	}
	gin.SetMode(cfg.Server.Mode)

	ctx := context.Background()

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open post store: %w", err)
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Error().Err(err).Msg("Failed to close post store")
		}
	}()

	credentials, err := auth.NewTable(cfg.Auth.Users)
	if err != nil {
		return err
	}

	metrics := middleware.NewMetrics()
	postService := application.NewPostService(st.posts, application.WithObserver(metrics))

	router, err := rest.NewRouter(rest.Dependencies{
		Posts:       postService,
		Credentials: credentials,
		Metrics:     metrics,
		Health:      st.ping,
		Site: rest.Site{
			Title:   cfg.Site.Title,
			About:   cfg.Site.About,
			BaseURL: cfg.Server.BaseURL,
		},
		Realm: cfg.Auth.Realm,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.Store.Driver).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}

func setupLogging(cfg config.LogConfig) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return nil
}
