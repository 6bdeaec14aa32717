// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/labmate/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the paper catalog over HTTP",
	Long: `Serve exposes the catalog through a small JSON API:

  GET /healthz            liveness probe
  GET /api/papers         list papers (optional ?limit=)
  GET /api/papers/{id}    one paper by arXiv ID
  GET /api/search?q=      full-text search over titles and abstracts`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().String("library", "", "catalog database path (default library/labmate.db)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	libPath, _ := cmd.Flags().GetString("library")

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	lib, err := openLibrary(libPath)
	if err != nil {
		return err
	}
	defer lib.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(lib, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
