package cli

// This file resolves the harness configuration from the configuration
// file and command-line flags.

import (
	"errors"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/goldenrun/goldenrun/config"
)

// loadConfig reads the configuration file (explicit or ./goldenrun.yaml) and
// applies the flags set on the command line on top of it.
func (a *App) loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()

	path := ctx.String("config")
	if path == "" {
		if _, err := os.Stat(config.DefaultFileName); err == nil {
			path = config.DefaultFileName
		} else if !errors.Is(err, fs.ErrNotExist) {
			a.logger.Warn().Err(err).Msg("Failed to check for default config file")
		}
	}

	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
		a.logger.Debug().Str("path", path).Msg("Loaded config file")
	}

	if ctx.IsSet("tool") {
		cfg.Tool = ctx.String("tool")
	}
	if ctx.IsSet("cases") {
		cfg.Cases = ctx.String("cases")
	}
	if ctx.IsSet("input-suffix") {
		cfg.InputSuffix = ctx.String("input-suffix")
	}
	if ctx.IsSet("output-suffix") {
		cfg.OutputSuffix = ctx.String("output-suffix")
	}
	if ctx.IsSet("filter") {
		cfg.Filter = ctx.String("filter")
	}
	if ctx.IsSet("timeout") {
		cfg.Timeout = ctx.Duration("timeout")
	}
	if ctx.IsSet("check-exit-code") {
		cfg.CheckExitCode = ctx.Bool("check-exit-code")
	}
	if ctx.IsSet("legacy-exit-status") {
		cfg.LegacyExitStatus = ctx.Bool("legacy-exit-status")
	}
	if ctx.IsSet("history-dir") {
		cfg.HistoryDir = ctx.String("history-dir")
	}
	if ctx.Bool("no-history") {
		cfg.HistoryDir = ""
	}

	return cfg, nil
}
