// Package logging configures the diagnostic logger used by the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ccollicutt/lrcparse/pkg/config"
)

// Configure builds a logrus logger from cfg.
// Logs go to w unless cfg.File is set, in which case they go to a rotated
// file. The returned Closer releases that file; it is a no-op for w.
func Configure(cfg config.LoggingConfig, w io.Writer) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level := cfg.Level
	if level == "" {
		level = config.DefaultLogLevel
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	logger.SetLevel(lvl)

	if cfg.File == "" {
		if w == nil {
			w = os.Stderr
		}
		logger.SetOutput(w)
		return logger, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    orDefault(cfg.MaxSizeMB, config.DefaultLogMaxSizeMB), // megabytes
		MaxBackups: orDefault(cfg.MaxBackups, config.DefaultLogMaxBackups),
		MaxAge:     orDefault(cfg.MaxAgeDays, config.DefaultLogMaxAgeDays),
		Compress:   false,
	}
	logger.SetOutput(rotator)
	return logger, rotator, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
