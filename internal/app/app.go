// Package app wires the workspace components together and owns the server
// lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/EdnaValter/Tracknamic-AI-Lab/internal/refresh"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/activity"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/auth"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/config"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/logger"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/promptapi"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/sandbox"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/store"
)

// App encapsulates the server components and lifecycle.
type App struct {
	cfg     *config.Config
	version string

	snap    *store.Snapshot
	store   *store.Store
	sandbox *sandbox.Service
	auth    *auth.Service

	srv *http.Server
}

// New initializes resources that do not require a running context: config
// validation, logging, the snapshot database and the collaborating
// services. Call Run to start the HTTP server and block until shutdown.
func New(ctx context.Context, cfg *config.Config, version string) (*App, error) {
	_ = godotenv.Load(".env")

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	logger.InitWithLevel(cfg.Logging.Level)

	snap, err := store.OpenSnapshotSized(cfg.Server.DBPath, cfg.Server.CacheSize.Int64())
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot at %s: %w", cfg.Server.DBPath, err)
	}

	var backend store.Backend
	if cfg.Upstream.URL != "" {
		backend = promptapi.New(cfg.Upstream.URL, cfg.Upstream.APIKey)
	}
	st := store.New(snap, backend, activity.NewLog(activity.DefaultCapacity))

	var completer sandbox.Completer
	if cfg.Sandbox.APIKey != "" {
		completer, err = sandbox.NewGenAI(ctx, cfg.Sandbox.APIKey)
		if err != nil {
			_ = snap.Close()
			return nil, fmt.Errorf("failed to build completion client: %w", err)
		}
	} else {
		completer = sandbox.NewPreview()
	}

	authSvc, err := auth.NewService(snap, cfg.Security.AllowedDomains)
	if err != nil {
		_ = snap.Close()
		return nil, err
	}

	return &App{
		cfg:     cfg,
		version: version,
		snap:    snap,
		store:   st,
		sandbox: sandbox.New(completer, snap, cfg.Sandbox.Model),
		auth:    authSvc,
	}, nil
}

// Run loads the prompt set, starts the refresh scheduler and the HTTP
// server, and blocks until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	if err := a.store.Load(ctx); err != nil {
		return fmt.Errorf("initial load failed: %w", err)
	}

	a.printBanner()

	cancelRefresh, err := refresh.Start(ctx, a.cfg.Refresh, a.store)
	if err != nil {
		return err
	}
	defer cancelRefresh()

	errCh := a.startHTTP()

	select {
	case <-ctx.Done():
		a.shutdown()
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// shutdown drains in-flight requests and closes the snapshot.
func (a *App) shutdown() {
	grace := a.cfg.Server.ShutdownGrace.Duration()
	if grace <= 0 {
		grace = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if a.srv != nil {
		if err := a.srv.Shutdown(ctx); err != nil {
			logger.Error("http_shutdown_failed", "error", err)
		}
	}
	if err := a.snap.Close(); err != nil {
		logger.Error("snapshot_close_failed", "error", err)
	}
	logger.Info("shutdown_complete")
}
