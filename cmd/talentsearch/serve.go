package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/smallnest/talentsearch/server"
	"github.com/smallnest/talentsearch/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serves the chat API with server-sent event streaming, session
management, Prometheus metrics on /metrics and a background reaper that
removes idle sessions.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	reaper, err := session.NewReaper(a.store, cfg.Store.MaxAge, cfg.Store.ReapInterval,
		session.WithReaperLogger(logger),
		session.WithReapCallback(a.metrics.RecordReaped),
	)
	if err != nil {
		return err
	}
	reaper.Start()

	gin.SetMode(cfg.HTTP.Mode)
	srv := server.New(a.service,
		server.WithLogger(logger),
		server.WithMetrics(a.metrics),
		server.WithCORSOrigins(cfg.HTTP.CORSOrigins...),
	)
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("talentsearch listening on %s", cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return errors.Join(httpServer.Shutdown(shutdownCtx), reaper.Stop())
	})
	return g.Wait()
}
