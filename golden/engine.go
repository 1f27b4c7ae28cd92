// Package golden runs every case of a repository through the external tool
// and either compares the output with the accepted baseline (verify) or
// replaces the baseline with it (rebase).
package golden

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"al.essio.dev/pkg/shellescape"
	"github.com/rs/zerolog"

	"github.com/goldenrun/goldenrun/cases"
	"github.com/goldenrun/goldenrun/model"
	"github.com/goldenrun/goldenrun/report"
	"github.com/goldenrun/goldenrun/runner"
)

// Executor runs a shell-style command line and captures its output.
type Executor interface {
	Run(ctx context.Context, commandLine string) (*runner.Result, error)
}

// Engine drives a run over all cases.
type Engine struct {
	logger        zerolog.Logger
	tool          string
	repo          *cases.Repository
	exec          Executor
	reporter      *report.Reporter
	filter        string
	checkExitCode bool
}

// Option is a function that configures an Engine.
type Option func(*Engine)

// WithFilter restricts the run to case IDs matching the glob pattern.
func WithFilter(pattern string) Option {
	return func(e *Engine) {
		e.filter = pattern
	}
}

// WithCheckExitCode fails verified cases whose tool run exited non-zero.
// By default the exit code and standard error are ignored.
func WithCheckExitCode(v bool) Option {
	return func(e *Engine) {
		e.checkExitCode = v
	}
}

// New creates an Engine invoking tool for the cases of repo.
func New(logger zerolog.Logger, tool string, repo *cases.Repository, exec Executor, reporter *report.Reporter, opts ...Option) *Engine {
	e := &Engine{
		logger:   logger,
		tool:     tool,
		repo:     repo,
		exec:     exec,
		reporter: reporter,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CommandLine builds the tool invocation for an input payload. The tool path
// is quoted; the payload is passed on verbatim and split like a shell would.
func (e *Engine) CommandLine(input string) string {
	return shellescape.Quote(e.tool) + " " + input
}

// Verify compares the output of every case with its baseline.
func (e *Engine) Verify(ctx context.Context) (*model.Summary, error) {
	return e.Run(ctx, model.ModeVerify)
}

// Rebase replaces the baseline of every case with the current tool output.
func (e *Engine) Rebase(ctx context.Context) (*model.Summary, error) {
	return e.Run(ctx, model.ModeRebase)
}

// Run processes all cases sequentially in the given mode. Case failures are
// collected in the summary; the returned error is reserved for faults that
// make the run itself unusable.
func (e *Engine) Run(ctx context.Context, mode model.Mode) (*model.Summary, error) {
	if mode != model.ModeVerify && mode != model.ModeRebase {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	ids, err := e.repo.ListMatching(e.filter)
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("mode", string(mode)).
		Str("dir", e.repo.Dir()).
		Int("cases", len(ids)).
		Msg("Running cases")

	summary := &model.Summary{Mode: mode}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		tc, loadErr := e.repo.Load(id)
		e.reporter.Start(tc)

		var v model.Verdict
		switch {
		case loadErr != nil:
			v = failed(tc, model.ReasonBadInput, fmt.Sprintf("bad input: %v", loadErr))
		case mode == model.ModeVerify:
			v, err = e.verifyCase(ctx, tc)
		default:
			v, err = e.rebaseCase(ctx, tc)
		}
		if err != nil {
			return summary, err
		}

		e.logger.Debug().
			Str("case", id).
			Str("status", string(v.Status)).
			Str("reason", string(v.Reason)).
			Msg("Case completed")

		e.reporter.Record(v)
		summary.Add(v)
	}

	e.reporter.Finish(summary)
	return summary, nil
}

func (e *Engine) verifyCase(ctx context.Context, tc model.TestCase) (model.Verdict, error) {
	res, failure, err := e.execute(ctx, tc)
	if err != nil || failure != nil {
		return deref(failure), err
	}

	expected, err := e.repo.ReadExpected(tc.ID)
	if err != nil {
		if errors.Is(err, cases.ErrBaselineMissing) {
			v := failed(tc, model.ReasonMissingBaseline, err.Error())
			withResult(&v, res)
			return v, nil
		}
		return model.Verdict{}, err
	}

	if !bytes.Equal(expected, res.Stdout) {
		v := failed(tc, model.ReasonMismatch, fmt.Sprintf("output differs from %s", filepath.Base(tc.ExpectedPath)))
		withResult(&v, res)
		v.Expected = expected
		return v, nil
	}

	if e.checkExitCode && res.ExitCode != 0 {
		v := failed(tc, model.ReasonExitCode, fmt.Sprintf("exit code %d", res.ExitCode))
		withResult(&v, res)
		return v, nil
	}

	v := verdict(tc, model.StatusPassed)
	withResult(&v, res)
	return v, nil
}

func (e *Engine) rebaseCase(ctx context.Context, tc model.TestCase) (model.Verdict, error) {
	res, failure, err := e.execute(ctx, tc)
	if err != nil || failure != nil {
		return deref(failure), err
	}

	if err := e.repo.WriteExpected(tc.ID, res.Stdout); err != nil {
		return model.Verdict{}, err
	}

	v := verdict(tc, model.StatusRebased)
	v.Message = fmt.Sprintf("wrote %d bytes to %s", len(res.Stdout), filepath.Base(tc.ExpectedPath))
	withResult(&v, res)
	return v, nil
}

// execute runs the tool for a case. A non-nil verdict is a case failure;
// a non-nil error aborts the run.
func (e *Engine) execute(ctx context.Context, tc model.TestCase) (*runner.Result, *model.Verdict, error) {
	res, err := e.exec.Run(ctx, e.CommandLine(tc.Input))
	if err == nil {
		return res, nil, nil
	}

	var v model.Verdict
	switch {
	case errors.Is(err, runner.ErrTimeout):
		v = failed(tc, model.ReasonTimeout, err.Error())
	case errors.Is(err, runner.ErrInvalidCommandLine):
		v = failed(tc, model.ReasonBadInput, fmt.Sprintf("bad input: %v", err))
	case ctx.Err() != nil:
		return nil, nil, ctx.Err()
	case errors.Is(err, runner.ErrToolUnavailable):
		v = failed(tc, model.ReasonToolUnavailable, err.Error())
	default:
		v = failed(tc, model.ReasonToolUnavailable, fmt.Sprintf("%s: %v", runner.ErrToolUnavailable, err))
	}

	e.logger.Debug().Err(err).Str("case", tc.ID).Msg("Tool invocation failed")
	return nil, &v, nil
}

func verdict(tc model.TestCase, status model.Status) model.Verdict {
	return model.Verdict{
		Case:   tc.ID,
		File:   filepath.Base(tc.InputPath),
		Status: status,
		Input:  tc.Input,
	}
}

func failed(tc model.TestCase, reason model.Reason, msg string) model.Verdict {
	v := verdict(tc, model.StatusFailed)
	v.Reason = reason
	v.Message = msg
	return v
}

func withResult(v *model.Verdict, res *runner.Result) {
	v.ExitCode = res.ExitCode
	v.Actual = res.Stdout
	v.Stderr = res.Stderr
}

func deref(v *model.Verdict) model.Verdict {
	if v == nil {
		return model.Verdict{}
	}
	return *v
}
