package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdcheck/internal/app"
	"github.com/lehigh-university-libraries/pdcheck/internal/handlers"
	"github.com/lehigh-university-libraries/pdcheck/internal/storage"
)

func newServeCmd() *cobra.Command {
	var historyLimit int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP lookup service",
		Long: `Starts an HTTP service that answers status lookups.

  POST /api/lookups        {"author": "...", "title": "...", "year": 1927}
  GET  /api/lookups        recent lookups
  GET  /api/lookups/{id}   one lookup
  GET  /healthcheck`,
		Example: `  # Start server on default address :8888
  pdcheck serve

  # Start server on a custom address
  pdcheck serve --addr :3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Load(cmd)
			if err != nil {
				return err
			}

			handler := handlers.New(a.Engine, storage.New(historyLimit))
			addr := a.Config.Addr
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("pdcheck lookup service available", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
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

	cmd.Flags().String("addr", ":8888", "Address to listen on (env PDCHECK_ADDR)")
	cmd.Flags().IntVar(&historyLimit, "history", storage.DefaultLimit, "Number of lookups kept in memory")

	return cmd
}
