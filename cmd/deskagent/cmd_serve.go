package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/stackdesk/deskagent/src/auth"
	"github.com/stackdesk/deskagent/src/authz"
	"github.com/stackdesk/deskagent/src/checkpoint"
	"github.com/stackdesk/deskagent/src/config"
	"github.com/stackdesk/deskagent/src/executor"
	"github.com/stackdesk/deskagent/src/httpapi"
	"github.com/stackdesk/deskagent/src/llm"
	"github.com/stackdesk/deskagent/src/notify"
	"github.com/stackdesk/deskagent/src/store"
)

// ServeCmd runs the agent HTTP service
type ServeCmd struct {
	ListenAddr string `help:"Listen address (overrides config)"`
}

// Run executes the serve command
func (c *ServeCmd) Run(ctx *kong.Context, cli *CLI) error {
	logger := createLogger(cli.LogLevel)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if c.ListenAddr != "" {
		cfg.Server.ListenAddr = c.ListenAddr
	}

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	model := llm.NewClient(llm.Config{
		BaseURL:    cfg.Model.BaseURL,
		APIKey:     cfg.Model.APIKey,
		Model:      cfg.Model.Model,
		Timeout:    cfg.Model.Timeout,
		MaxRetries: cfg.Model.MaxRetries,
		Logger:     logger,
	})

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, logger)
	}

	service, err := executor.NewService(executor.Options{
		Model:         model,
		Checkpoints:   checkpoint.NewSQLStore(db.DB()),
		Gate:          authz.NewGate(db.DB(), logger),
		Logger:        logger,
		SystemPrompt:  cfg.Agent.SystemPrompt,
		MaxIterations: cfg.Agent.MaxIterations,
	})
	if err != nil {
		return err
	}

	server := httpapi.NewServer(db.DB(), service, auth.NewSQLProvider(db.DB()), notifier, logger)

	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}

	return nil
}
