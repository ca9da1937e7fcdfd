package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/kss-mcp/internal/config"
	"github.com/dshills/kss-mcp/internal/logging"
	"github.com/dshills/kss-mcp/internal/mcp"
	"github.com/dshills/kss-mcp/internal/storage"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Start the MCP server on stdio.

Stdout carries the protocol. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	// Stdout is reserved for the MCP protocol
	log.SetOutput(os.Stderr)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	logger.Info("kssmcp starting",
		"version", Version,
		"build_mode", storage.BuildMode,
		"driver", storage.DriverName)

	server, err := mcp.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	logger.Info("MCP server ready, listening on stdio")
	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
