package cli

// This file contains the view command for displaying the failures of a
// recorded run.

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/goldenrun/goldenrun/cases"
	"github.com/goldenrun/goldenrun/history"
	"github.com/goldenrun/goldenrun/model"
	"github.com/goldenrun/goldenrun/report"
)

type viewOptions struct {
	stderr bool
	noDiff bool
}

func removeFirstDashDash(in []string) []string {
	if len(in) > 0 && in[0] == "--" {
		return in[1:]
	}
	return in
}

// parseViewArgs splits the raw view arguments into the run selector and the
// display options. Flag parsing is done by hand so that negative indexes
// like -1 are not mistaken for flags.
func parseViewArgs(in []string) (idArg string, opts viewOptions, err error) {
	idArg = "0"
	seenID := false

	for _, arg := range removeFirstDashDash(in) {
		switch arg {
		case "--stderr":
			opts.stderr = true
			continue
		case "--no-diff":
			opts.noDiff = true
			continue
		case "--":
			continue
		}

		// A negative index is "-" followed by only digits (e.g. "-1", "-2")
		if len(arg) > 1 && arg[0] == '-' {
			if _, perr := strconv.ParseInt(arg, 10, 64); perr != nil {
				return "", viewOptions{}, fmt.Errorf("unknown option: %s", arg)
			}
		}
		if seenID {
			return "", viewOptions{}, fmt.Errorf("unexpected argument: %s", arg)
		}
		idArg = arg
		seenID = true
	}

	return idArg, opts, nil
}

func (a *App) view(ctx *cli.Context) error {
	arg, opts, err := parseViewArgs(ctx.Args().Slice())
	if err != nil {
		return cli.Exit(err, ExitCommandError)
	}

	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return cli.Exit(err, ExitCommandError)
	}
	if cfg.HistoryDir == "" {
		return cli.Exit("history directory is not set", ExitCommandError)
	}

	// Load all history entries
	historyEntries, err := history.LoadEntries(a.logger, history.Root(cfg.HistoryDir))
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to load history: %v", err), ExitCommandError)
	}
	history.Sort(historyEntries)

	targetEntry, err := history.Find(historyEntries, arg)
	if err != nil {
		return cli.Exit(err, ExitCommandError)
	}

	return a.displayHistoryEntry(ctx.App.Writer, targetEntry, opts)
}

func (a *App) displayHistoryEntry(out io.Writer, entry *history.Entry, opts viewOptions) error {
	h := entry.History

	// Print header
	fmt.Fprintf(out, "=== Run: %s (%s) ===\n", shorten(h.ID), h.Mode)
	fmt.Fprintf(out, "Time: %s\n", h.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Duration: %s\n", h.Duration)
	fmt.Fprintf(out, "Exit Code: %d\n", h.ExitCode)
	if h.WorkDir != "" {
		fmt.Fprintf(out, "Working Dir: %s\n", h.WorkDir)
	}
	if h.Git != nil && h.Git.Commit != "" {
		fmt.Fprintf(out, "Git Commit: %s", shorten(h.Git.Commit))
		if h.Git.Branch != "" {
			fmt.Fprintf(out, " (%s)", h.Git.Branch)
		}
		fmt.Fprintln(out)
	}
	if h.Suite != nil {
		fmt.Fprintf(out, "Tool: %s\n", h.Suite.Tool)
		fmt.Fprintf(out, "Cases: %s\n", h.Suite.CaseDir)
	}

	summary := model.Summary{Mode: h.Mode, Verdicts: h.Verdicts}
	ok, failed := summary.Counts()
	fmt.Fprintf(out, "Verdicts: %d ok, %d failed, %d total\n", ok, failed, summary.Total())
	fmt.Fprintln(out)

	failures := h.Failures()
	if len(failures) == 0 {
		fmt.Fprintln(out, "No failed cases")
		return nil
	}

	for _, v := range failures {
		fmt.Fprintf(out, "FAILED: '%s' [%s]\n", v.File, report.Detail(v))
		if v.Message != "" && v.Reason == model.ReasonMismatch {
			fmt.Fprintf(out, "    %s\n", v.Message)
		}

		actualArtifact := h.ArtifactFor(v.Case, model.ArtifactTypeActualOutput)
		actual, err := readArtifact(entry.FullPath, actualArtifact)
		if err != nil {
			a.logger.Warn().Err(err).Str("case", v.Case).Msg("Failed to read recorded output")
		}

		if !opts.noDiff && actualArtifact != nil && err == nil && v.Reason == model.ReasonMismatch {
			if err := a.displayDiff(out, h.Suite, v.Case, actual); err != nil {
				a.logger.Warn().Err(err).Str("case", v.Case).Msg("Failed to diff against baseline")
			}
		}

		if opts.stderr {
			stderr, err := readArtifact(entry.FullPath, h.ArtifactFor(v.Case, model.ArtifactTypeStderr))
			if err != nil {
				a.logger.Warn().Err(err).Str("case", v.Case).Msg("Failed to read recorded stderr")
			}
			if len(stderr) > 0 {
				fmt.Fprintln(out, "    stderr:")
				writeIndented(out, string(stderr))
			}
		}
	}

	fmt.Fprintf(out, "\nHistory directory: %s\n", entry.FullPath)
	return nil
}

// displayDiff compares the recorded output with the baseline as it is on
// disk now.
func (a *App) displayDiff(out io.Writer, suite *model.Suite, caseID string, actual []byte) error {
	if suite == nil {
		return errors.New("run has no suite information")
	}
	repo, err := cases.Open(suite.CaseDir, suite.InputSuffix, suite.OutputSuffix)
	if err != nil {
		return err
	}
	expected, err := repo.ReadExpected(caseID)
	if err != nil {
		return err
	}

	diff := report.Diff(expected, actual)
	if diff == "" {
		fmt.Fprintln(out, "    recorded output now matches the baseline")
		return nil
	}
	fmt.Fprintln(out, "    diff (-baseline +recorded):")
	writeIndented(out, diff)
	return nil
}

func readArtifact(runDir string, artifact *model.Artifact) ([]byte, error) {
	if artifact == nil {
		return nil, nil
	}
	return os.ReadFile(filepath.Join(runDir, artifact.File))
}

func writeIndented(out io.Writer, text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(out, "    %s\n", line)
	}
}
