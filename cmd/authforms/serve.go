// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/authforms/authforms/internal/auth"
	"github.com/authforms/authforms/internal/observability"
	"github.com/authforms/authforms/internal/web"
)

// shutdownTimeout bounds graceful shutdown of the HTTP servers.
const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the authentication forms over HTTP",
		Long: `Serve the login, registration and password-reset forms over HTTP.
Prometheus metrics and health probes are served on metrics_addr unless it
is empty. Reset links are logged instead of emailed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
}

// logNotifier logs issued reset links in place of email delivery.
func logNotifier(logger *slog.Logger) auth.ResetNotifier {
	return func(ctx context.Context, email, token string) {
		logger.InfoContext(ctx, "password reset link issued", "email", email, "link", resetLink(token))
	}
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := setupLogging(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	subs, err := newBackend(ctx, cfg, logger, logNotifier(logger))
	if err != nil {
		return err
	}

	handlerOpts := []web.Option{web.WithLogger(logger)}

	var obsServer *observability.Server
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool { return true },
			observability.WithLogger(logger))
		obsErrCh, err := obsServer.Start()
		if err != nil {
			return oops.Code("SERVE_FAILED").With("addr", cfg.MetricsAddr).Wrapf(err, "start observability server")
		}
		go monitorServerErrors(ctx, cancel, logger, obsErrCh, "observability")
		handlerOpts = append(handlerOpts, web.WithObserver(obsServer.Metrics()))
	}

	handler, err := web.NewHandler(subs, handlerOpts...)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		stopObservability(logger, obsServer)
		return oops.Code("SERVE_FAILED").With("addr", cfg.HTTPAddr).Wrapf(err, "listen")
	}

	httpSrv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	cmd.Printf("Serving forms on %s\n", listener.Addr())
	logger.InfoContext(ctx, "form server ready", "http_addr", listener.Addr().String(), "metrics_addr", cfg.MetricsAddr)

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case serveErr = <-errCh:
		logger.Error("form server error", "error", serveErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping form server", "error", err)
	}
	stopObservability(logger, obsServer)

	if serveErr != nil {
		return oops.Code("SERVE_FAILED").Wrap(serveErr)
	}
	logger.Info("shutdown complete")
	return nil
}

// monitorServerErrors cancels ctx when a background server reports an error.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, errCh <-chan error, name string) {
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			logger.Error("server failed, shutting down", "server", name, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}

func stopObservability(logger *slog.Logger, srv *observability.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Warn("error stopping observability server", "error", err)
	}
}
