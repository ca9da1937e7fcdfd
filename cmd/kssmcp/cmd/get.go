package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/kss-mcp/internal/config"
	"github.com/dshills/kss-mcp/internal/mcp"
	"github.com/dshills/kss-mcp/internal/storage"
	"github.com/dshills/kss-mcp/pkg/types"
)

type modifierOutput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ClassName   string `json:"class_name"`
}

type sectionOutput struct {
	Found       bool             `json:"found"`
	Reference   string           `json:"reference"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Modifiers   []modifierOutput `json:"modifiers"`
	Filename    string           `json:"filename"`
	Path        string           `json:"path"`
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "get <reference>",
		Short: "Print a style guide section as JSON",
		Long: `Look up a section of an indexed style guide by reference and print it
as JSON. An unknown reference prints an empty section with found=false.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			store, err := openStorage(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			index, _, err := storage.LoadIndex(cmd.Context(), store, name)
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("style guide %q has not been indexed", name)
			}
			if err != nil {
				return err
			}

			section := index.Lookup(args[0])
			data, err := json.MarshalIndent(newSectionOutput(section), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to format section: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", mcp.DefaultGuideName, "Style guide name")

	return cmd
}

func newSectionOutput(section types.Section) sectionOutput {
	out := sectionOutput{
		Found:       !section.IsEmpty(),
		Reference:   section.Reference,
		Title:       section.Title,
		Description: section.Description,
		Modifiers:   make([]modifierOutput, 0, len(section.Modifiers)),
		Filename:    section.Filename,
		Path:        section.Path,
	}
	for _, m := range section.Modifiers {
		out.Modifiers = append(out.Modifiers, modifierOutput{
			Name:        m.Name,
			Description: m.Description,
			ClassName:   m.ClassName(),
		})
	}
	return out
}
