package report

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldenrun/goldenrun/model"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func testCase(id string) model.TestCase {
	return model.TestCase{
		ID:           id,
		InputPath:    "cases/" + id + ".in",
		ExpectedPath: "cases/" + id + ".out",
	}
}

// play feeds a sequence of verdicts through the reporter the way the engine does.
func play(r *Reporter, mode model.Mode, verdicts ...model.Verdict) *model.Summary {
	summary := &model.Summary{Mode: mode}
	for _, v := range verdicts {
		r.Start(testCase(v.Case))
		r.Record(v)
		summary.Add(v)
	}
	r.Finish(summary)
	return summary
}

func TestReporter_VerifyFailures(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	summary := play(r, model.ModeVerify,
		model.Verdict{Case: "add", File: "add.in", Status: model.StatusPassed, Input: "48 01 D8\n"},
		model.Verdict{Case: "nop", File: "nop.in", Status: model.StatusFailed, Reason: model.ReasonMismatch, Input: "90\n"},
		model.Verdict{Case: "ret", File: "ret.in", Status: model.StatusFailed, Reason: model.ReasonMissingBaseline, Input: "C3\n"},
		model.Verdict{Case: "jmp", File: "jmp.in", Status: model.StatusFailed, Reason: model.ReasonToolUnavailable,
			Message: "tool unavailable: /opt/zydis/ZydisInfo: no such file or directory"},
	)

	require.Equal(t, ExitFailure, ExitCode(summary))
	newGoldie(t).Assert(t, "verify_failures", buf.Bytes())
}

func TestReporter_VerifyVerbosePass(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, WithVerbose(true))

	summary := play(r, model.ModeVerify,
		model.Verdict{Case: "add", File: "add.in", Status: model.StatusPassed},
		model.Verdict{Case: "nop", File: "nop.in", Status: model.StatusPassed},
	)

	require.Equal(t, ExitSuccess, ExitCode(summary))
	newGoldie(t).Assert(t, "verify_verbose_pass", buf.Bytes())
}

func TestReporter_Rebase(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, WithVerbose(true))

	summary := play(r, model.ModeRebase,
		model.Verdict{Case: "add", File: "add.in", Status: model.StatusRebased, Message: "wrote 13 bytes to add.out"},
		model.Verdict{Case: "ret", File: "ret.in", Status: model.StatusFailed, Reason: model.ReasonTimeout, Message: "tool timed out after 1s"},
	)

	require.Equal(t, ExitFailure, ExitCode(summary))
	newGoldie(t).Assert(t, "rebase_verbose", buf.Bytes())
}

func TestReporter_EmptyRunPasses(t *testing.T) {
	var buf bytes.Buffer
	summary := play(New(&buf), model.ModeVerify)

	assert.Equal(t, ExitSuccess, ExitCode(summary))
	assert.Equal(t, "\n0 passed, 0 failed, 0 total\nALL PASSED\n", buf.String())
}

func TestReporter_Diff(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, WithDiff(true))

	r.Record(model.Verdict{
		Case:     "add",
		File:     "add.in",
		Status:   model.StatusFailed,
		Reason:   model.ReasonMismatch,
		Input:    "48 01 D8",
		Expected: []byte("add rax, rbx\n"),
		Actual:   []byte("add rax, rcx\n"),
	})

	out := buf.String()
	assert.Contains(t, out, "FAILED: 'add.in' [48 01 D8]\n")
	assert.Contains(t, out, "add rax, rbx")
	assert.Contains(t, out, "add rax, rcx")
}

func TestDiff(t *testing.T) {
	assert.Empty(t, Diff([]byte("same\n"), []byte("same\n")))
	assert.NotEmpty(t, Diff([]byte("a\n"), []byte("a\x00\n")))
}

func TestDetail(t *testing.T) {
	tests := []struct {
		name string
		v    model.Verdict
		want string
	}{
		{
			name: "mismatch shows input without line ending",
			v:    model.Verdict{Reason: model.ReasonMismatch, Input: "48 01 D8\r\n"},
			want: "48 01 D8",
		},
		{
			name: "missing baseline",
			v:    model.Verdict{Reason: model.ReasonMissingBaseline, Input: "C3"},
			want: "Output file missing",
		},
		{
			name: "exit code uses message",
			v:    model.Verdict{Reason: model.ReasonExitCode, Message: "exit code 2"},
			want: "exit code 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detail(tt.v))
		})
	}
}
