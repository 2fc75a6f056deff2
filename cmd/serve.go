package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/mrzscan/internal/handlers"
	"github.com/lehigh-university-libraries/mrzscan/internal/observe"
	"github.com/lehigh-university-libraries/mrzscan/internal/storage"
	"github.com/lehigh-university-libraries/mrzscan/internal/verify"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		flags engineFlags
		port  int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MRZ verification HTTP API",
		Long: `Starts an HTTP server exposing the verifier.

  POST /api/verify   multipart "file" field or raw image/PDF body (?page=N)
  POST /api/check    {"mrz": "..."} validated without OCR
  GET  /healthcheck  liveness
  GET  /metrics      prometheus metrics`,
		Example: `  # Start server on default port 8888
  mrzscan serve

  # Start server on custom port with the fast strategy
  mrzscan serve --port 3000 --strategy fast`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if err := flags.apply(cmd, &cfg); err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := observe.NewMetrics(reg)

			v, err := verify.FromConfig(cfg, observe.NewLogSink(slog.Default()), metrics)
			if err != nil {
				return err
			}

			addr := fmt.Sprintf(":%d", cfg.Port)
			server := &http.Server{
				Addr:              addr,
				Handler:           handlers.Router(handlers.New(v, storage.New(storage.DefaultCapacity)), reg, cfg.OCRTimeout+30*time.Second),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("mrzscan API available", "addr", addr, "url", "http://localhost"+addr, "engine", cfg.Engine)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	flags.bind(cmd)
	cmd.Flags().IntVarP(&port, "port", "p", 8888, "Port to listen on")

	return cmd
}
