package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campusqa/campusqa/internal/api"
	"github.com/campusqa/campusqa/internal/app"
	"github.com/campusqa/campusqa/internal/messaging"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the web and SMS question-answering endpoints",
		Long: `Starts the HTTP server with the web form, the synchronous /ask
endpoint, and the asynchronous /sms webhook backed by a worker pool
that answers and delivers replies in order.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init application: %w", err)
	}

	var validator api.WebhookValidator
	if cfg.Messaging.ValidateSignatures {
		v := messaging.NewWebhookValidator(cfg.Messaging.AuthToken)
		validator = &v
	}
	server := api.NewServer(application.Service, application.Dispatcher, validator, cfg, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	dispatcherDone := make(chan struct{})
	go func() {
		application.Dispatcher.Run(ctx)
		close(dispatcherDone)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", zap.Error(err))
	}

	// Accepted jobs finish before exit; the dispatcher drains its queue
	// once ctx is canceled.
	select {
	case <-dispatcherDone:
	case <-shutdownCtx.Done():
		logger.Warn("dispatcher drain timed out")
	}

	logger.Info("server stopped")
	return nil
}
