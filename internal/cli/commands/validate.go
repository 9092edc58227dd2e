package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/lrcparse/pkg/config"
	"github.com/ccollicutt/lrcparse/pkg/source"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate an lrcparse configuration file without decoding anything.

Checks:
  - YAML or TOML syntax
  - Required fields (at least one input)
  - first_line_search_timeout is positive
  - Output and logging settings
  - Webhook URLs and triggers
  - Input file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Inputs:         %d pattern(s)\n", len(cfg.Inputs))
	fmt.Fprintf(w, "  Search timeout: %d\n", cfg.FirstLineSearchTimeout)
	fmt.Fprintf(w, "  Output:         %s\n", cfg.Output.Format)
	fmt.Fprintf(w, "  Logging:        %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)
	if cfg.Catalog.Path != "" {
		fmt.Fprintf(w, "  Catalog:        %s\n", cfg.Catalog.Path)
	}

	if len(cfg.Webhooks) > 0 {
		fmt.Fprintf(w, "\nWebhooks:\n")
		for i, wh := range cfg.Webhooks {
			name := wh.Name
			if name == "" {
				name = wh.URL
			}
			fmt.Fprintf(w, "  %d. %s [%s, timeout %s]\n", i+1, name, wh.Trigger, wh.Timeout.Std())
		}
	}

	// Input existence is a warning only
	files, err := source.ExpandInputs(cfg.Inputs)
	switch {
	case err != nil:
		fmt.Fprintf(w, "\nWarning: Error expanding input patterns: %v\n", err)
	case len(files) == 0:
		fmt.Fprintf(w, "\nWarning: No files match input patterns\n")
	default:
		fmt.Fprintf(w, "\nLyric files matched: %d\n", len(files))
		for _, f := range files {
			if _, err := os.Stat(f); err != nil {
				fmt.Fprintf(w, "  - %s (warning: not found)\n", f)
				continue
			}
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}

	return nil
}
