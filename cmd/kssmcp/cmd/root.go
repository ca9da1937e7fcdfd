// Package cmd provides the CLI commands for kssmcp.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/kss-mcp/internal/storage"
)

// Set at build time with -ldflags "-X".
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// rootOptions holds the flags shared by every subcommand
type rootOptions struct {
	configPath string
}

// NewRootCmd creates the root command for the kssmcp CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "kssmcp",
		Short: "MCP server for KSS style guides",
		Long: `kssmcp indexes KSS documentation comments in stylesheets and serves the
resulting style guide to AI coding assistants over the Model Context Protocol.

Running kssmcp without a subcommand starts the MCP server on stdio.`,
		Version:      Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.SetVersionTemplate(versionTemplate())
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: $KSSMCP_CONFIG or ./.kssmcp.yaml)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newIndexCmd(opts))
	cmd.AddCommand(newGetCmd(opts))

	return cmd
}

// Execute runs the root command until it finishes or the process receives
// SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCmd().ExecuteContext(ctx)
}

func versionTemplate() string {
	return fmt.Sprintf("KSS MCP Server\nVersion: {{.Version}}\nBuild Time: %s\nBuild Mode: %s\nSQLite Driver: %s\nNative SQLite: %v\n",
		BuildTime, storage.BuildMode, storage.DriverName, storage.NativeSQLite)
}
