package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	tcawshttp "github.com/sagarc03/tcaws/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the tcaws HTTP server.

GET requests load source images through the path resolver, PUT and DELETE
write to the storage bucket, and /_presign and /_resolve expose presigned
URLs and path resolution.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP server port (default: 8888, env: TC_AWS_PORT)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := appFromCommand(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); cerr != nil {
			slog.Warn("close resources", "err", cerr)
		}
	}()

	handler := tcawshttp.NewHandler(&tcawshttp.HandlerConfig{
		CORS:          a.cfg.CORS,
		MaxUploadSize: a.cfg.Server.MaxUploadSize,
		PresignExpiry: a.cfg.PresignExpiry(),
		Logger:        slog.Default(),
	}, a.loader, a.storage, a.adapter)

	addr := fmt.Sprintf(":%d", a.cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server",
		"addr", addr,
		"backend", a.cfg.Store.Backend,
		"bucket", a.cfg.Loader.Bucket,
		"storage_bucket", a.cfg.Storage.Bucket,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
