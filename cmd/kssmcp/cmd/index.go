package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/kss-mcp/internal/config"
	"github.com/dshills/kss-mcp/internal/indexer"
	"github.com/dshills/kss-mcp/internal/logging"
	"github.com/dshills/kss-mcp/internal/mcp"
	"github.com/dshills/kss-mcp/internal/storage"
)

func newIndexCmd(opts *rootOptions) *cobra.Command {
	var (
		name       string
		workingDir string
		skipErrors bool
	)

	cmd := &cobra.Command{
		Use:   "index [path...]",
		Short: "Index stylesheet directories into a style guide",
		Long: `Scan directories for KSS documentation comments and store the resulting
style guide in the catalogue database.

Paths are scanned in the order given. When a reference is documented twice,
the one found last wins. Without arguments the configured paths are used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			paths := args
			if len(paths) == 0 {
				paths = cfg.Paths
			}
			if len(paths) == 0 {
				return fmt.Errorf("no paths given and none configured")
			}

			if !cmd.Flags().Changed("working-dir") {
				workingDir = cfg.WorkingDir
			}
			if !cmd.Flags().Changed("skip-errors") {
				skipErrors = cfg.SkipErrors
			}
			if workingDir == "" {
				if workingDir, err = os.Getwd(); err != nil {
					return fmt.Errorf("failed to get working directory: %w", err)
				}
			}
			if workingDir, err = filepath.Abs(workingDir); err != nil {
				return fmt.Errorf("failed to resolve working directory: %w", err)
			}

			store, err := openStorage(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
			index, stats, err := indexer.New().WithLogger(logger).BuildIndex(cmd.Context(), paths, &indexer.Config{
				WorkingDir: workingDir,
				Workers:    cfg.Workers,
				SkipErrors: skipErrors,
			})
			if err != nil {
				return err
			}

			guide := &storage.Guide{Name: name, Roots: paths, WorkingDir: workingDir}
			if err := storage.SaveIndex(cmd.Context(), store, guide, index, stats); err != nil {
				return fmt.Errorf("failed to save style guide: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Indexed style guide %q\n", guide.Name)
			_, _ = fmt.Fprintf(out, "  Files scanned:        %d\n", stats.FilesScanned)
			_, _ = fmt.Fprintf(out, "  Sections indexed:     %d\n", stats.SectionsIndexed)
			_, _ = fmt.Fprintf(out, "  Duplicate references: %d\n", stats.DuplicateReferences)
			if stats.FilesFailed > 0 {
				_, _ = fmt.Fprintf(out, "  Files skipped:        %d\n", stats.FilesFailed)
			}
			_, _ = fmt.Fprintf(out, "  Duration:             %s\n", stats.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", mcp.DefaultGuideName, "Style guide name")
	cmd.Flags().StringVar(&workingDir, "working-dir", "", "Directory stripped from section paths (default: current directory)")
	cmd.Flags().BoolVar(&skipErrors, "skip-errors", false, "Skip unreadable files instead of failing")

	return cmd
}

// openStorage opens the catalogue database named by cfg, creating its
// directory if needed
func openStorage(cfg *config.Config) (*storage.SQLiteStorage, error) {
	dbFile, err := cfg.DatabaseFile()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue: %w", err)
	}
	return store, nil
}
