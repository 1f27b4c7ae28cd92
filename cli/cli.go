package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/goldenrun/goldenrun/model"
)

const AppName = "goldenrun"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
			NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
		})

	app := &App{
		logger: logger,
		cli: &cli.App{
			Name:           AppName,
			Usage:          "Golden-file regression harness for command-line disassemblers",
			DefaultCommand: "verify",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging and report passing cases",
				},
				&cli.StringFlag{
					Name:    "config",
					Aliases: []string{"c"},
					Usage:   "Path of a YAML configuration file (default: ./goldenrun.yaml if present)",
				},
				&cli.StringFlag{
					Name:    "history-dir",
					Usage:   "Directory where run history is stored",
					EnvVars: []string{"GOLDENRUN_HISTORY_DIR"},
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
			// Exit codes are mapped by the caller, see ExitCode.
			ExitErrHandler: func(*cli.Context, error) {},
		},
	}
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "verify",
		Usage:  "Run every case and compare the tool output with the accepted baseline",
		Action: app.verify,
		Flags:  runFlags(),
		Description: `Runs <tool> <contents of <id>.in> for every case and compares its standard
output byte for byte with <id>.out.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed (255 with --legacy-exit-status)
  2 - Command error (invalid configuration, missing case directory, I/O fault)`,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:    "rebase",
		Aliases: []string{"update"},
		Usage:   "Run every case and overwrite its baseline with the current tool output",
		Action:  app.rebase,
		Flags:   runFlags(),
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "cases",
		Usage:  "List the cases of the case directory and whether their baseline exists",
		Action: app.listCases,
		Flags: []cli.Flag{
			casesFlag(),
			inputSuffixFlag(),
			outputSuffixFlag(),
			filterFlag(),
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "list",
		Usage:  "List previous runs",
		Action: app.list,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Only show runs of this mode (verify or rebase)",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Limit number of results (default: 20)",
				Value:   20,
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:            "view",
		Usage:           "View the failures of a previous run",
		ArgsUsage:       "[ID|INDEX] [--stderr] [--no-diff]",
		Action:          app.view,
		SkipFlagParsing: true,
		Description: `View the failures of a previous run.

Arguments:
  0           View last run (default)
  -1          View 2nd last run
  -2          View 3rd last run
  <hex-id>    View run matching the ID prefix

Options:
  --stderr    Also print the standard error captured for failed cases
  --no-diff   Do not diff the recorded output against the current baseline

Examples:
  goldenrun view            # View last run
  goldenrun view -1         # View 2nd last run
  goldenrun view 3f2a --stderr`,
	})
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetOutput redirects the report output, standard output by default.
func (a *App) SetOutput(w io.Writer) {
	a.cli.Writer = w
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		if len(commit) > 8 {
			commit = commit[:8]
		}
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	}
}

func (a *App) verify(ctx *cli.Context) error {
	return a.runSuite(ctx, model.ModeVerify)
}

func (a *App) rebase(ctx *cli.Context) error {
	return a.runSuite(ctx, model.ModeRebase)
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "tool",
			Aliases: []string{"t"},
			Usage:   "Path of the disassembler executable",
			EnvVars: []string{"GOLDENRUN_TOOL"},
		},
		casesFlag(),
		inputSuffixFlag(),
		outputSuffixFlag(),
		filterFlag(),
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Kill the tool after this long per case (0 waits forever)",
		},
		&cli.BoolFlag{
			Name:  "check-exit-code",
			Usage: "Fail cases whose tool run exits with a non-zero status",
		},
		&cli.BoolFlag{
			Name:  "diff",
			Usage: "Print a diff of expected and actual output for mismatching cases",
		},
		&cli.BoolFlag{
			Name:  "no-history",
			Usage: "Do not record this run in the history directory",
		},
		&cli.BoolFlag{
			Name:  "legacy-exit-status",
			Usage: "Exit with status 255 instead of 1 when a case fails",
		},
	}
}

func casesFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "cases",
		Aliases: []string{"d"},
		Usage:   "Directory holding the <id>.in / <id>.out pairs (default: ./cases)",
		EnvVars: []string{"GOLDENRUN_CASES"},
	}
}

func inputSuffixFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "input-suffix",
		Usage: "Suffix of input files (default: .in)",
	}
}

func outputSuffixFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "output-suffix",
		Usage: "Suffix of expected output files (default: .out)",
	}
}

func filterFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "filter",
		Usage: "Only run cases whose ID matches this glob pattern",
	}
}
