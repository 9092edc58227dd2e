package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/lrcparse/pkg/batch"
	"github.com/ccollicutt/lrcparse/pkg/catalog"
	"github.com/ccollicutt/lrcparse/pkg/config"
	"github.com/ccollicutt/lrcparse/pkg/lrc"
	"github.com/ccollicutt/lrcparse/pkg/output"
	"github.com/ccollicutt/lrcparse/pkg/source"
	"github.com/ccollicutt/lrcparse/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	ConfigFile    string
	Output        string
	SearchTimeout int
	Concurrency   int
	Verbose       bool
	Quiet         bool
	Import        bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [files, globs or directories...]",
		Short: "Decode LRC lyric files into timed intervals",
		Long: `Decode LRC lyric files into timed intervals.

Each line starting with a [mm:ss.xx], [mm:ss.xxx], [h:mm:ss.xx] or
[h:mm:ss.xxx] timestamp begins an interval that ends where the next
timestamped line begins. The last interval has no known end.

A file is rejected as not LRC when it contains too many lines without a
leading timestamp (see --search-timeout).

Inputs come from the arguments, or from the inputs list of --config.
Directories are searched recursively for .lrc files.

Exit codes:
  0 - All inputs decoded
  1 - At least one input is not LRC or could not be read
  2 - Configuration or runtime error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file (YAML or TOML)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|yaml)")
	cmd.Flags().IntVar(&opts.SearchTimeout, "search-timeout", config.DefaultSearchTimeout, "Lines without a timestamp tolerated before a file is rejected")
	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "j", 0, "Files decoded in parallel (0 = number of CPUs)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show per-file decode statistics")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().BoolVar(&opts.Import, "import", false, "Store decoded files in the catalog (catalog.path or $"+config.EnvCatalog+")")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOnFailure), "When to fire webhook (on_failure|always|never)")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := resolveParseConfig(cmd, args, opts)
	if err != nil {
		return err
	}

	logger, logCloser, err := commandLogger(cmd, &cfg.Logging)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	files, err := source.ExpandInputs(cfg.Inputs)
	if err != nil {
		return fmt.Errorf("expanding inputs: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no lyric files matched: %v", cfg.Inputs)
	}

	decoder := lrc.NewDecoder(
		lrc.WithSearchTimeout(cfg.FirstLineSearchTimeout),
		lrc.WithLogger(logger),
	)

	result, err := batch.Run(ctx, files, batch.Options{
		Concurrency: cfg.Concurrency,
		Decoder:     decoder,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	report := output.NewReport(result, opts.ConfigFile, cfg.FirstLineSearchTimeout)

	formatter, err := output.NewFormatter(string(cfg.Output.Format), output.FormatOptions{
		Verbose: cfg.Output.Verbose,
		Quiet:   cfg.Output.Quiet,
	})
	if err != nil {
		return err
	}

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if opts.Import {
		if err := importResults(ctx, cfg.Catalog.Path, result, logger); err != nil {
			return err
		}
	}

	// Webhook failures are logged and never fail the run.
	webhook.NewClient().Notify(ctx, cfg.Webhooks, report, logger)

	if report.HasFailures() {
		ExitCode = 1
	}

	return nil
}

// resolveParseConfig reads --config if given, applies command-line
// overrides on top of it and validates the result.
func resolveParseConfig(cmd *cobra.Command, args []string, opts *ParseOptions) (*config.Config, error) {
	var cfg *config.Config
	if opts.ConfigFile != "" {
		decoded, err := config.Decode(cmd.Context(), opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = decoded
	} else {
		cfg = config.DefaultConfig()
		cfg.ApplyEnvironmentOverrides()
	}

	// Arguments replace the configured inputs.
	if len(args) > 0 {
		cfg.Inputs = args
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Format = config.OutputFormat(opts.Output)
	}
	if flags.Changed("search-timeout") {
		cfg.FirstLineSearchTimeout = opts.SearchTimeout
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = opts.Concurrency
	}
	if flags.Changed("verbose") {
		cfg.Output.Verbose = opts.Verbose
	}
	if flags.Changed("quiet") {
		cfg.Output.Quiet = opts.Quiet
	}
	if opts.WebhookURL != "" {
		cfg.Webhooks = append(cfg.Webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: config.WebhookTrigger(opts.WebhookTrigger),
		})
	}

	if len(cfg.Inputs) == 0 {
		return nil, errors.New("no inputs: pass lyric files as arguments or use --config")
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if opts.Import && cfg.Catalog.Path == "" {
		return nil, fmt.Errorf("--import needs catalog.path in the config or $%s", config.EnvCatalog)
	}
	return cfg, nil
}

func importResults(ctx context.Context, dbPath string, result *batch.Result, logger logrus.FieldLogger) error {
	store, err := catalog.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer store.Close()

	for _, fr := range result.Files {
		if fr.Err != nil {
			continue
		}
		path := fr.Path
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		doc, err := store.Put(ctx, path, fr.Intervals)
		if err != nil {
			return fmt.Errorf("importing %s: %w", fr.Path, err)
		}
		logger.WithFields(logrus.Fields{
			"file":      path,
			"id":        doc.ID,
			"intervals": doc.IntervalCount,
		}).Debug("imported lyric file")
	}
	return nil
}
