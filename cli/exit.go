package cli

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/goldenrun/goldenrun/report"
)

// Process exit statuses.
const (
	ExitSuccess       = report.ExitSuccess
	ExitFailure       = report.ExitFailure
	ExitCommandError  = 2
	ExitLegacyFailure = 255
)

// ExitCode maps an error returned by Run to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitCommandError
}
