package cli

// This file contains Git integration utilities for retrieving
// repository information.

import (
	"context"
	"fmt"
	"strings"

	"github.com/goldenrun/goldenrun/runner"
)

// getGitInfo returns the commit and branch checked out at dir.
func (a *App) getGitInfo(dir string) (commit, branch string, err error) {
	git := runner.New(a.logger, runner.WithDir(dir))

	commit, err = gitOutput(git, "rev-parse", "HEAD")
	if err != nil {
		return "", "", fmt.Errorf("failed to get git commit: %w", err)
	}

	branch, err = gitOutput(git, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", "", fmt.Errorf("failed to get git branch: %w", err)
	}

	return commit, branch, nil
}

func gitOutput(git *runner.Runner, args ...string) (string, error) {
	res, err := git.RunArgs(context.Background(), "git", args...)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("git %s: exit code %d: %s",
			strings.Join(args, " "), res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}
