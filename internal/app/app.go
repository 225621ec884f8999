// Package app wires together the room core, storage, and transport layers.
package app

import (
	"context"
	"fmt"
	stdhttp "net/http"

	"github.com/rs/zerolog"

	"github.com/clubchat/clubchat-server/internal/config"
	"github.com/clubchat/clubchat-server/internal/core"
	"github.com/clubchat/clubchat-server/internal/profanity"
	"github.com/clubchat/clubchat-server/internal/secret"
	"github.com/clubchat/clubchat-server/internal/store"
	transporthttp "github.com/clubchat/clubchat-server/internal/transport/http"
)

// App runs one chat room behind an HTTP server.
type App struct {
	cfg    config.Config
	server *stdhttp.Server
	hub    *core.Hub
	store  store.Store
	filter *profanity.Filter
	log    *zerolog.Logger
}

// New constructs the application with the provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := store.Open(cfg.Storage.Driver, cfg.Storage.Path, cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("driver", cfg.Storage.Driver).Str("path", cfg.Storage.Path).Msg("history store initialized")

	secrets := secret.NewFileStore(cfg.SecretPath)
	filter := profanity.NewFilter()

	hub := core.NewHub(core.HubConfig{
		HistoryLimit:     cfg.HistoryLimit,
		IdleTimeout:      cfg.IdleTimeout,
		SweepInterval:    cfg.IdleSweepInterval,
		AdminWindow:      cfg.AdminWindow,
		SlowModeInterval: cfg.SlowModeInterval,
	}, logger, st, secrets, filter.Contains)

	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		cfg:    cfg,
		server: server,
		hub:    hub,
		store:  st,
		filter: filter,
		log:    logger,
	}, nil
}

// Run starts the hub and HTTP server and blocks until context cancellation,
// an admin restart, or a fatal server error.
func (a *App) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go a.hub.Run(hubCtx)

	// Word list fetch is best-effort; until it loads the filter is a no-op.
	go func() {
		if err := a.filter.Refresh(hubCtx, a.log, a.cfg.ProfanitySources); err != nil {
			a.log.Warn().Err(err).Msg("profanity list unavailable")
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-a.hub.ShutdownRequests():
		a.log.Warn().Msg("admin restart requested, shutting down")
		return a.shutdown(serverErr)
	case <-ctx.Done():
		return a.shutdown(serverErr)
	}
}

func (a *App) shutdown(serverErr chan error) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.log.Info().Msg("shutting down http server")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.cleanup()
		return err
	}
	a.cleanup()
	return <-serverErr
}

// cleanup closes the store and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
