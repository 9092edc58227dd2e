// Package cli provides the command-line interface for lrcparse.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/lrcparse/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lrcparse",
		Short: "Decode LRC lyric files into timed intervals",
		Long: `lrcparse decodes LRC lyric files into timed intervals.

Every line that starts with a timestamp becomes an interval running until
the next timestamped line. Files with too many lines before (or between)
timestamps are rejected as not LRC, so lrcparse can be pointed at mixed
directories and report which files are lyrics.

Decoded lyrics can be stored in a SQLite catalog and searched.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global logging flags; unset flags fall back to the config file, then
	// the defaults.
	rootCmd.PersistentFlags().String(commands.FlagLogLevel, "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String(commands.FlagLogFormat, "text", "Log format (text|json)")
	rootCmd.PersistentFlags().String(commands.FlagLogFile, "", "Write logs to a rotated file instead of stderr")

	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewImportCommand())
	rootCmd.AddCommand(commands.NewSearchCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
