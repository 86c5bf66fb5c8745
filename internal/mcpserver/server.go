// Package mcpserver implements the serve command that runs the MCP server
// over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	configpkg "github.com/Leon4s4/dynamics-mcp/internal/config"
	"github.com/Leon4s4/dynamics-mcp/internal/dataverse"
	logpkg "github.com/Leon4s4/dynamics-mcp/internal/log"
	"github.com/Leon4s4/dynamics-mcp/internal/mcp/server"
	"github.com/Leon4s4/dynamics-mcp/pkg/httpclient"
)

// NewCommand creates the serve command.
func NewCommand(version string) *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Dynamics 365 MCP server",
		Long: `Start the Dynamics 365 MCP (Model Context Protocol) server.

The server runs in stdio mode, suitable for integration with AI assistants
via their MCP configuration:

  {
    "mcpServers": {
      "dynamics": {
        "command": "dynamics-mcp",
        "args": ["serve"]
      }
    }
  }

On startup the server exposes six tools: register, list, execute, refresh,
status, and unregister. Registering an endpoint introspects the instance's
entity metadata and synthesizes create/read/update/delete/list/search
operations for every discovered record type; no per-entity code exists.

Endpoints can be pre-registered through the --config file:

  endpoints:
    - name: production
      connection_string: "Url=https://org.crm.dynamics.com;ClientId=...;ClientSecret=..."`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindEnvFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, logLevel, version)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML configuration file")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Logging verbosity (trace, debug, info, warn, error)")

	return cmd
}

// bindEnvFlags lets flags fall back to DYNAMICS_* environment variables
// (DYNAMICS_CONFIG, DYNAMICS_LOG_LEVEL) when not set on the command line.
// MCP host configurations often can only pass environment, not arguments.
func bindEnvFlags(flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(flag *pflag.Flag) {
		if flag.Changed {
			return
		}
		env := "DYNAMICS_" + strings.ToUpper(strings.ReplaceAll(flag.Name, "-", "_"))
		if value, ok := os.LookupEnv(env); ok && value != "" {
			if err := flag.Value.Set(value); err != nil && bindErr == nil {
				bindErr = fmt.Errorf("invalid value in %s: %w", env, err)
			}
		}
	})
	return bindErr
}

func runServe(configPath, logLevel, version string) error {
	cfg := configpkg.Default()
	if configPath != "" {
		loaded, err := configpkg.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	logCfg := logpkg.FromEnv()
	if cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		logCfg.Format = logpkg.Format(cfg.Log.Format)
	}
	if logLevel != "" {
		logCfg.Level = logLevel
	}
	logger := logpkg.New(logCfg)
	slog.SetDefault(logger)

	httpClient, err := httpclient.New(cfg.HTTPClientConfig())
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	registry := dataverse.NewRegistry(&dataverse.OAuthTokenProvider{HTTPClient: httpClient}, httpClient, logger)

	// Pre-register configured endpoints. A failed registration is logged and
	// skipped; the server still starts so the endpoint can be registered
	// interactively once the cause is fixed.
	for _, ep := range cfg.Endpoints {
		creds := dataverse.ParseConnectionString(ep.ConnectionString)
		status, err := registry.Register(context.Background(), creds)
		if err != nil {
			logger.Warn("failed to pre-register endpoint",
				slog.String("name", ep.Name),
				slog.Any("error", err),
			)
			continue
		}
		logger.Info("pre-registered endpoint",
			slog.String("name", ep.Name),
			slog.String(logpkg.EndpointKey, status.ID),
			slog.Int("operations", status.Operations),
		)
	}

	srv, err := server.NewServer(server.ServerConfig{
		Name:     "dynamics-mcp",
		Version:  version,
		Registry: registry,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived shutdown signal, shutting down gracefully...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
