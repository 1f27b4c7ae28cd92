package cli

// This file contains the verify and rebase commands which run every case
// of the suite through the external tool.

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/goldenrun/goldenrun/cases"
	"github.com/goldenrun/goldenrun/config"
	"github.com/goldenrun/goldenrun/golden"
	"github.com/goldenrun/goldenrun/model"
	"github.com/goldenrun/goldenrun/report"
	"github.com/goldenrun/goldenrun/runner"
)

func (a *App) runSuite(ctx *cli.Context, mode model.Mode) error {
	startTime := time.Now()

	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return cli.Exit(err, ExitCommandError)
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("invalid configuration: %v", err), ExitCommandError)
	}

	repo, err := cases.Open(cfg.Cases, cfg.InputSuffix, cfg.OutputSuffix)
	if err != nil {
		return cli.Exit(err, ExitCommandError)
	}

	run := runner.New(a.logger, runner.WithTimeout(cfg.Timeout))
	rep := report.New(ctx.App.Writer,
		report.WithVerbose(ctx.Bool("verbose")),
		report.WithDiff(ctx.Bool("diff")),
	)
	engine := golden.New(a.logger, cfg.Tool, repo, run, rep,
		golden.WithFilter(cfg.Filter),
		golden.WithCheckExitCode(cfg.CheckExitCode),
	)

	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt)
	defer stop()

	summary, runErr := engine.Run(runCtx, mode)

	exitCode := ExitCommandError
	if runErr == nil {
		exitCode = report.ExitCode(summary)
		if exitCode == ExitFailure && cfg.LegacyExitStatus {
			exitCode = ExitLegacyFailure
		}
	}

	if cfg.HistoryDir != "" && summary != nil {
		history := a.newHistory(cfg, mode, startTime)
		history.ExitCode = exitCode
		history.Duration = time.Since(startTime)

		// Record the history (non-fatal if it fails)
		if runDir, err := a.recordHistory(cfg.HistoryDir, history, summary); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to record history")
		} else {
			a.logger.Debug().Str("dir", runDir).Str("id", history.ID).Msg("Recorded run")
		}
	}

	if runErr != nil {
		a.logger.Error().Err(runErr).Msg("Run aborted")
		return cli.Exit(fmt.Sprintf("run aborted: %v", runErr), ExitCommandError)
	}
	if exitCode != ExitSuccess {
		return cli.Exit("", exitCode)
	}
	return nil
}

func (a *App) newHistory(cfg config.Config, mode model.Mode, startTime time.Time) *model.History {
	history := &model.History{
		ID:        uuid.NewString(),
		Mode:      mode,
		Timestamp: startTime,
		Args:      os.Args,
		Suite: &model.Suite{
			Tool:         cfg.Tool,
			CaseDir:      cfg.Cases,
			InputSuffix:  cfg.InputSuffix,
			OutputSuffix: cfg.OutputSuffix,
			Filter:       cfg.Filter,
		},
	}

	// Capture working directory
	if cwd, err := os.Getwd(); err == nil {
		history.WorkDir = cwd
	}

	// Capture git info (non-fatal if it fails)
	if commit, branch, err := a.getGitInfo(cfg.Cases); err == nil {
		history.Git = &model.Git{
			Commit: commit,
			Branch: branch,
		}
	}

	return history
}
