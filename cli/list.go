package cli

// This file contains the list command for displaying previous runs.

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/goldenrun/goldenrun/history"
	"github.com/goldenrun/goldenrun/model"
)

func (a *App) list(ctx *cli.Context) error {
	mode := model.Mode(ctx.String("mode"))
	limit := ctx.Int("limit")
	out := ctx.App.Writer

	if mode != "" && mode != model.ModeVerify && mode != model.ModeRebase {
		return cli.Exit(fmt.Sprintf("invalid mode %q (use verify or rebase)", mode), ExitCommandError)
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

	// Apply mode filter if specified
	var filteredEntries []history.Entry
	for _, entry := range historyEntries {
		if mode == "" || entry.History.Mode == mode {
			filteredEntries = append(filteredEntries, entry)
		}
	}

	if len(filteredEntries) == 0 {
		if mode != "" {
			fmt.Fprintf(out, "No %s runs found\n", mode)
		} else {
			fmt.Fprintln(out, "No runs found")
		}
		fmt.Fprintf(out, "Runs are saved to %s/<timestamp>-<commit>-<id>/\n", history.Root(cfg.HistoryDir))
		return nil
	}

	history.Sort(filteredEntries)

	// Apply limit
	displayRuns := filteredEntries
	if limit > 0 && limit < len(displayRuns) {
		displayRuns = displayRuns[:limit]
	}

	fmt.Fprintf(out, "\n=== History (%d total) ===\n\n", len(filteredEntries))

	for _, entry := range displayRuns {
		h := entry.History
		timestamp := h.Timestamp.Format("2006-01-02 15:04:05")
		duration := h.Duration.Round(time.Millisecond)

		status := "✓"
		if h.ExitCode != 0 {
			status = "✗"
		}

		summary := model.Summary{Mode: h.Mode, Verdicts: h.Verdicts}
		ok, failed := summary.Counts()

		fmt.Fprintf(out, "%s  %s  %-6s  [%s]  exit=%d  id=%s\n",
			status, timestamp, h.Mode, duration, h.ExitCode, shorten(h.ID))
		fmt.Fprintf(out, "   Cases: %d ok, %d failed\n", ok, failed)
		if h.Suite != nil {
			fmt.Fprintf(out, "   Tool: %s\n", h.Suite.Tool)
			fmt.Fprintf(out, "   Cases dir: %s\n", h.Suite.CaseDir)
			if h.Suite.Filter != "" {
				fmt.Fprintf(out, "   Filter: %s\n", h.Suite.Filter)
			}
		}
		if len(h.Args) > 1 {
			fmt.Fprintf(out, "   Args: %s\n", strings.Join(h.Args[1:], " "))
		}
		if h.Git != nil && h.Git.Commit != "" {
			fmt.Fprintf(out, "   Commit: %s", shorten(h.Git.Commit))
			if h.Git.Branch != "" {
				fmt.Fprintf(out, " (%s)", h.Git.Branch)
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "   %s\n", entry.FullPath)
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "View failures: %s view <ID>\n", AppName)

	return nil
}
