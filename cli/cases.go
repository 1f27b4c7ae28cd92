package cli

// This file contains the cases command for listing the cases of a suite.

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/goldenrun/goldenrun/cases"
)

func (a *App) listCases(ctx *cli.Context) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return cli.Exit(err, ExitCommandError)
	}

	repo, err := cases.Open(cfg.Cases, cfg.InputSuffix, cfg.OutputSuffix)
	if err != nil {
		return cli.Exit(err, ExitCommandError)
	}

	ids, err := repo.ListMatching(cfg.Filter)
	if err != nil {
		return cli.Exit(err, ExitCommandError)
	}

	out := ctx.App.Writer
	missing := 0
	for _, id := range ids {
		state := "ok"
		if !repo.HasExpected(id) {
			state = "missing"
			missing++
		}
		fmt.Fprintf(out, "%-8s %s\n", state, id)
	}
	fmt.Fprintf(out, "\n%d cases, %d without baseline\n", len(ids), missing)
	return nil
}
