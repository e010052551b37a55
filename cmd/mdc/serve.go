package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zuo-Peng/mdc/internal/config"
	"github.com/Zuo-Peng/mdc/internal/logger"
	"github.com/Zuo-Peng/mdc/internal/stubserver"
)

func serveStubCmd() *cobra.Command {
	var addr string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "serve-stub",
		Short: "Run a local stand-in for the document chat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.StubAddr
			}

			log, err := logger.NewConsole(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer log.Sync()

			httpServer := &http.Server{
				Addr:         addr,
				Handler:      stubserver.New(log, ttl),
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				log.Info("shutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			log.Info("starting stub server", zap.String("addr", addr), zap.Duration("session_ttl", ttl))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8000)")
	cmd.Flags().DurationVar(&ttl, "session-ttl", time.Hour, "Idle time before a stub session expires")

	return cmd
}
