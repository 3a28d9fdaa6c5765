package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/swatto/hooktomattermost/internal/handler"
)

const (
	// AppName is the name of the application
	AppName = "hooktomattermost"
	// AppDescription provides a brief description of the application
	AppDescription = "Datto RMM and OpenPhone webhooks to Mattermost relay"
)

// Version can be set at build time via ldflags
var Version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	serve := func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return run(ctx, configFile)
	}

	root := &cobra.Command{
		Use:          AppName,
		Short:        AppDescription,
		Version:      Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         serve,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (default $CONFIG_FILE)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the webhook HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE:  serve,
	})
	root.AddCommand(newRenderCmd())
	return root
}

// loadConfig reads the configuration and applies the logging settings.
func loadConfig(path string) (*handler.Config, string, error) {
	cfg, port, err := handler.LoadConfig(path)
	if err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	level, _ := handler.ParseLevel(cfg.LogLevel)
	slog.SetLogLoggerLevel(level)
	return cfg, port, nil
}

// run starts the HTTP server and blocks until ctx is cancelled or the server
// fails.
func run(ctx context.Context, configFile string) error {
	cfg, port, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.WebhookURL == "" && !cfg.DryRun {
		slog.Warn("startup: MATTERMOST_WEBHOOK_URL is not set, webhooks will fail until it is configured")
	}

	h := handler.New(cfg, Version)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler.LogRequests(cfg.LogFormat, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RelayTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	printBanner(port, cfg)

	// Channel to receive server errors
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server started successfully", "app", AppName, "version", Version, "port", port)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start HTTP server: %w", err)
	case <-ctx.Done():
		slog.Info("Shutting down server...")
	}

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to terminate: %w", err)
	}

	slog.Info("Server stopped gracefully")
	return nil
}
