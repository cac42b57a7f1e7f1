package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mongobridge/sql-to-mongo/cmd/sql-to-mongo/api"
	"github.com/mongobridge/sql-to-mongo/lib/mongodb"
	"github.com/mongobridge/sql-to-mongo/lib/mongoql"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	ConfigFile string
	ListenAddr string
}

// NewServeCommand starts the HTTP API.
func NewServeCommand(root *RootOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the translation API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(root)

			cfg, err := loadConfig(opts.ConfigFile)
			if err != nil {
				return err
			}
			if opts.ListenAddr != "" {
				cfg.ListenAddr = opts.ListenAddr
			}
			if cfg.ListenAddr == "" {
				cfg.ListenAddr = ":8080"
			}

			var exec api.Executor
			if cfg.Mongo.URI != "" {
				ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
				defer cancel()
				executor, err := mongodb.Connect(ctx, cfg.Mongo, logger)
				if err != nil {
					return err
				}
				defer func() {
					_ = executor.Close(context.Background())
				}()
				exec = executor
			}

			srv, err := api.NewServer(cfg, exec, logger)
			if err != nil {
				return fmt.Errorf("failed to configure server: %w", err)
			}

			httpServer := &http.Server{
				Addr:         cfg.ListenAddr,
				Handler:      srv,
				ReadTimeout:  60 * time.Second,
				WriteTimeout: 60 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", cfg.ListenAddr)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-quit:
			}

			logger.Info("shutting down server")

			// allow in-flight requests to finish
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				logger.Error("server forced to shutdown", "error", err)
			}
			logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "YAML configuration file")
	cmd.Flags().StringVar(&opts.ListenAddr, "listen", "", "listen address (overrides config)")
	return cmd
}

// loadConfig reads the YAML configuration. Without a file, the server
// runs with read-only capabilities and an open catalog.
func loadConfig(path string) (api.Config, error) {
	cfg := api.Config{Capabilities: mongoql.ReadOnly()}
	if path == "" {
		return cfg, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
