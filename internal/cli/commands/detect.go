package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/lrcparse/pkg/config"
	"github.com/ccollicutt/lrcparse/pkg/detector"
	"github.com/ccollicutt/lrcparse/pkg/lrc"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output        string
	SampleSize    int
	SearchTimeout int
	ShowAll       bool
	WriteConfig   string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <lyric-file>",
		Short: "Report which timestamp grammars a lyric file uses",
		Long: `Sample a lyric file and report its timestamp grammars.

Counts how many lines start with each recognized timestamp shape, where the
first timestamped line is, how many lines carry <mm:ss.xx> word tags, and
whether the file would pass the first-line search with the given
--search-timeout. Prints a ready-to-use configuration snippet.

Optionally generates a starter config file with --write-config.

Recognized grammars (in matching priority order):
  [mm:ss.xxx]     minutes and seconds with milliseconds
  [mm:ss.xx]      minutes and seconds with centiseconds
  [h:mm:ss.xxx]   hours, minutes and seconds with milliseconds
  [h:mm:ss.xx]    hours, minutes and seconds with centiseconds

Example:
  lrcparse detect song.lrc
  lrcparse detect --sample 500 album/track01.lrc
  lrcparse detect --write-config lrcparse.yaml song.lrc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 200, "Number of lines to sample")
	cmd.Flags().IntVar(&opts.SearchTimeout, "search-timeout", config.DefaultSearchTimeout, "Search timeout to check the sample against")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show every grammar seen, not just the most common")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	lyricFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := os.Stat(lyricFile); os.IsNotExist(err) {
		return fmt.Errorf("lyric file not found: %s", lyricFile)
	}

	d := detector.New(
		detector.WithSampleSize(opts.SampleSize),
		detector.WithSearchTimeout(opts.SearchTimeout),
	)

	result, err := d.DetectFromFile(ctx, lyricFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	w := cmd.OutOrStdout()

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(result, lyricFile, opts.WriteConfig, w); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(result, lyricFile, opts, w)
	case "text", "":
		return outputDetectText(result, lyricFile, opts, w)
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func outputDetectText(result *detector.DetectionResult, lyricFile string, opts *DetectOptions, w io.Writer) error {
	fmt.Fprintln(w, "=== Timestamp Grammar Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", lyricFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Lines with timestamps: %d\n", result.AnchoredLines)
	fmt.Fprintf(w, "Lines without timestamps: %d\n", result.UnanchoredLines)
	if result.EnhancedLines > 0 {
		fmt.Fprintf(w, "Lines with word tags: %d\n", result.EnhancedLines)
	}
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No timestamp grammar detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: LRC lines start with a timestamp such as [01:23.45].")
		fmt.Fprintln(w, "Check the first few lines manually.")
		return nil
	}

	best := result.BestMatch()
	fmt.Fprintf(w, "Detected Grammar: %s (%s)\n", best.Format.Name, best.Format.Grammar)
	fmt.Fprintf(w, "Share: %.1f%% (%d/%d timestamped lines)\n",
		best.Confidence*100, best.MatchCount, result.AnchoredLines)
	fmt.Fprintf(w, "First timestamped line: %d\n", result.FirstAnchored)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sample match:\n  %s\n", best.SampleLine)
	if best.SampleMillis != lrc.Unknown {
		fmt.Fprintf(w, "Starts at: %s\n", lrc.FormatMillis(best.SampleMillis))
	} else {
		fmt.Fprintln(w, "Starts at: overflow")
	}
	fmt.Fprintln(w)

	if result.Mixed() {
		fmt.Fprintf(w, "Note: %d different grammars are used in this file.\n", len(result.Matches))
		fmt.Fprintln(w)
	}

	if result.WithinBudget() {
		fmt.Fprintf(w, "Search timeout %d: accepted\n", result.SearchTimeout)
	} else {
		fmt.Fprintf(w, "WARNING: search timeout %d is exhausted at line %d; the file will be rejected.\n",
			result.SearchTimeout, result.ExhaustedAt)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "--- Configuration snippet (copy to your config file) ---")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "first_line_search_timeout: %d\n", result.SuggestedSearchTimeout())
	fmt.Fprintln(w)

	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- Other grammars detected ---")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%d lines, %.1f%%)\n", i+2, m.Format.Name, m.MatchCount, m.Confidence*100)
			fmt.Fprintf(w, "   pattern: '%s'\n", m.Format.PatternStr)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// JSONMatch represents a grammar match in JSON output.
type JSONMatch struct {
	Grammar      string  `json:"grammar"`
	Name         string  `json:"name"`
	Pattern      string  `json:"pattern"`
	FractionUnit string  `json:"fraction_unit"`
	Confidence   float64 `json:"confidence"`
	MatchCount   int     `json:"match_count"`
	SampleLine   string  `json:"sample_line"`
	SampleMillis int64   `json:"sample_ms"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File                   string      `json:"file"`
	Matches                []JSONMatch `json:"matches"`
	SampledLines           int         `json:"sampled_lines"`
	AnchoredLines          int         `json:"anchored_lines"`
	UnanchoredLines        int         `json:"unanchored_lines"`
	EnhancedLines          int         `json:"enhanced_lines"`
	FirstAnchored          int         `json:"first_anchored_line"`
	SearchTimeout          int         `json:"search_timeout"`
	WithinBudget           bool        `json:"within_budget"`
	ExhaustedAt            int         `json:"exhausted_at_line,omitempty"`
	SuggestedSearchTimeout int         `json:"suggested_search_timeout"`
}

func outputDetectJSON(result *detector.DetectionResult, lyricFile string, opts *DetectOptions, w io.Writer) error {
	out := JSONOutput{
		File:                   lyricFile,
		SampledLines:           result.SampledLines,
		AnchoredLines:          result.AnchoredLines,
		UnanchoredLines:        result.UnanchoredLines,
		EnhancedLines:          result.EnhancedLines,
		FirstAnchored:          result.FirstAnchored,
		SearchTimeout:          result.SearchTimeout,
		WithinBudget:           result.WithinBudget(),
		ExhaustedAt:            result.ExhaustedAt,
		SuggestedSearchTimeout: result.SuggestedSearchTimeout(),
		Matches:                make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1] // Only show best match
	}

	for _, m := range matches {
		out.Matches = append(out.Matches, JSONMatch{
			Grammar:      m.Format.Grammar.String(),
			Name:         m.Format.Name,
			Pattern:      m.Format.PatternStr,
			FractionUnit: m.Format.FractionUnit,
			Confidence:   m.Confidence,
			MatchCount:   m.MatchCount,
			SampleLine:   m.SampleLine,
			SampleMillis: m.SampleMillis,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeStarterConfig generates a starter config file for the detected file.
func writeStarterConfig(result *detector.DetectionResult, lyricFile, configPath string, w io.Writer) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	if !result.HasMatch() {
		return fmt.Errorf("cannot generate config: no timestamp grammar detected")
	}

	content, err := generateStarterConfig(lyricFile, result)
	if err != nil {
		return err
	}

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig renders a YAML config for the lyric file's directory.
func generateStarterConfig(lyricFile string, result *detector.DetectionResult) ([]byte, error) {
	absLyricFile := lyricFile
	if abs, err := filepath.Abs(lyricFile); err == nil {
		absLyricFile = abs
	}

	cfg := config.DefaultConfig()
	cfg.Inputs = []string{filepath.Join(filepath.Dir(absLyricFile), "*.lrc")}
	cfg.FirstLineSearchTimeout = result.SuggestedSearchTimeout()

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("rendering config: %w", err)
	}

	header := "# lrcparse configuration\n# Generated by: lrcparse detect\n"
	if best := result.BestMatch(); best != nil {
		header += fmt.Sprintf("# Detected grammar: %s (%.0f%% of timestamped lines)\n", best.Format.Name, best.Confidence*100)
	}
	return append([]byte(header+"\n"), body...), nil
}
