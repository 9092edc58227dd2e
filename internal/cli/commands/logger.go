package commands

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/lrcparse/internal/logging"
	"github.com/ccollicutt/lrcparse/pkg/config"
)

// Global logging flag names, registered on the root command.
const (
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
	FlagLogFile   = "log-file"
)

// commandLogger builds the logger for a command run. Settings come from cfg
// (or the defaults plus environment when cfg is nil); any global logging
// flag set on the command line wins. Callers close the returned Closer when
// the command finishes.
func commandLogger(cmd *cobra.Command, cfg *config.LoggingConfig) (*logrus.Logger, io.Closer, error) {
	var lc config.LoggingConfig
	if cfg != nil {
		lc = *cfg
	} else {
		defaults := config.DefaultConfig()
		defaults.ApplyEnvironmentOverrides()
		lc = defaults.Logging
	}

	overrideFromFlag(cmd, FlagLogLevel, &lc.Level)
	overrideFromFlag(cmd, FlagLogFormat, &lc.Format)
	overrideFromFlag(cmd, FlagLogFile, &lc.File)

	return logging.Configure(lc, cmd.ErrOrStderr())
}

func overrideFromFlag(cmd *cobra.Command, name string, dst *string) {
	f := cmd.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return
	}
	*dst = f.Value.String()
}
