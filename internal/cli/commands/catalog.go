package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/lrcparse/pkg/batch"
	"github.com/ccollicutt/lrcparse/pkg/catalog"
	"github.com/ccollicutt/lrcparse/pkg/config"
	"github.com/ccollicutt/lrcparse/pkg/lrc"
	"github.com/ccollicutt/lrcparse/pkg/source"
)

// CatalogOptions holds options shared by the catalog commands.
type CatalogOptions struct {
	DBPath        string
	SearchTimeout int
	Concurrency   int
	Limit         int
	Output        string
}

func (o *CatalogOptions) dbPath() (string, error) {
	if o.DBPath != "" {
		return o.DBPath, nil
	}
	if p := os.Getenv(config.EnvCatalog); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("no catalog: pass --db or set $%s", config.EnvCatalog)
}

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	opts := &CatalogOptions{}

	cmd := &cobra.Command{
		Use:   "import <files, globs or directories...>",
		Short: "Decode lyric files and store them in the catalog",
		Long: `Decode lyric files and store their intervals in a SQLite catalog.

Re-importing a file replaces its previous entry. Files that are not LRC
are reported and skipped.

Exit codes:
  0 - All inputs imported
  1 - At least one input is not LRC or could not be read
  2 - Configuration or runtime error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "Catalog database path (default $"+config.EnvCatalog+")")
	cmd.Flags().IntVar(&opts.SearchTimeout, "search-timeout", config.DefaultSearchTimeout, "Lines without a timestamp tolerated before a file is rejected")
	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "j", 0, "Files decoded in parallel (0 = number of CPUs)")

	return cmd
}

func runImport(cmd *cobra.Command, args []string, opts *CatalogOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dbPath, err := opts.dbPath()
	if err != nil {
		return err
	}
	if opts.SearchTimeout <= 0 {
		return fmt.Errorf("--search-timeout must be positive, got %d", opts.SearchTimeout)
	}

	logger, logCloser, err := commandLogger(cmd, nil)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	files, err := source.ExpandInputs(args)
	if err != nil {
		return fmt.Errorf("expanding inputs: %w", err)
	}

	result, err := batch.Run(ctx, files, batch.Options{
		Concurrency: opts.Concurrency,
		Decoder:     lrc.NewDecoder(lrc.WithSearchTimeout(opts.SearchTimeout), lrc.WithLogger(logger)),
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	if err := importResults(ctx, dbPath, result, logger); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, fr := range result.Files {
		switch {
		case fr.Err == nil:
			fmt.Fprintf(w, "imported %s (%d intervals)\n", fr.Path, len(fr.Intervals))
		case fr.NotLRC():
			fmt.Fprintf(w, "skipped  %s: not LRC\n", fr.Path)
		default:
			fmt.Fprintf(w, "failed   %s: %v\n", fr.Path, fr.Err)
		}
	}
	fmt.Fprintf(w, "\n%d of %d files imported into %s\n", result.Parsed(), len(result.Files), dbPath)

	if result.Failed() > 0 {
		ExitCode = 1
	}
	return nil
}

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	opts := &CatalogOptions{}

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search imported lyrics",
		Long: `Search the lyric catalog for intervals containing the given text.

Matching ignores ASCII case. Each hit shows the file, the interval's time
range and its text.

Example:
  lrcparse search --db lyrics.db "hold on"
  lrcparse search --db lyrics.db -o json love`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "Catalog database path (default $"+config.EnvCatalog+")")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 20, "Maximum number of hits")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string, opts *CatalogOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dbPath, err := opts.dbPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("catalog not found: %s", dbPath)
	}

	store, err := catalog.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer store.Close()

	hits, err := store.Search(ctx, args[0], opts.Limit)
	if err != nil {
		return fmt.Errorf("searching catalog: %w", err)
	}

	w := cmd.OutOrStdout()
	switch opts.Output {
	case "json":
		if hits == nil {
			hits = []catalog.Hit{}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(hits)
	case "text", "":
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	if len(hits) == 0 {
		fmt.Fprintf(w, "No matches for %q\n", args[0])
		return nil
	}
	for _, h := range hits {
		fmt.Fprintf(w, "%s #%d  %s\n", h.Path, h.Seq, h.Interval)
	}
	return nil
}
