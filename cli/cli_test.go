package cli

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeDisassembler = `#!/bin/sh
echo "decoded: $*"
`

type suite struct {
	tool       string
	cases      string
	historyDir string
}

func newSuite(t *testing.T, files map[string]string) suite {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	root := t.TempDir()
	s := suite{
		tool:       filepath.Join(root, "disasm"),
		cases:      filepath.Join(root, "cases"),
		historyDir: filepath.Join(root, "state"),
	}
	require.NoError(t, os.WriteFile(s.tool, []byte(fakeDisassembler), 0755))
	require.NoError(t, os.Mkdir(s.cases, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(s.cases, name), []byte(content), 0644))
	}
	return s
}

// run executes the application and returns its report output and exit status.
func (s suite) run(t *testing.T, args ...string) (string, int) {
	t.Helper()
	var out bytes.Buffer
	app := New()
	app.SetOutput(&out)

	argv := append([]string{AppName, "--history-dir", s.historyDir}, args...)
	err := app.Run(argv)
	return out.String(), ExitCode(err)
}

func (s suite) runFlags(extra ...string) []string {
	return append([]string{"--tool", s.tool, "--cases", s.cases}, extra...)
}

func TestVerifyAllPassed(t *testing.T) {
	s := newSuite(t, map[string]string{
		"add.in":  "48 01 D8\n",
		"add.out": "decoded: 48 01 D8\n",
		"nop.in":  "90\n",
		"nop.out": "decoded: 90\n",
	})

	out, code := s.run(t, append([]string{"verify"}, s.runFlags()...)...)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, filepath.Join(s.cases, "add.in"))
	assert.Contains(t, out, "2 passed, 0 failed, 2 total")
	assert.Contains(t, out, "ALL PASSED")
	assert.NotContains(t, out, "FAILED")
}

func TestVerifyIsDefaultCommand(t *testing.T) {
	s := newSuite(t, map[string]string{
		"nop.in":  "90\n",
		"nop.out": "decoded: 90\n",
	})

	t.Setenv("GOLDENRUN_TOOL", s.tool)
	t.Setenv("GOLDENRUN_CASES", s.cases)

	out, code := s.run(t)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "ALL PASSED")
}

func TestVerifyMissingBaseline(t *testing.T) {
	s := newSuite(t, map[string]string{
		"ret.in": "C3\n",
	})

	out, code := s.run(t, append([]string{"verify"}, s.runFlags()...)...)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, out, "FAILED: 'ret.in' [Output file missing]")

	_, code = s.run(t, append([]string{"verify"}, s.runFlags("--legacy-exit-status")...)...)
	assert.Equal(t, ExitLegacyFailure, code)
}

func TestVerifyMismatchShowsInput(t *testing.T) {
	s := newSuite(t, map[string]string{
		"add.in":  "48 01 D8\n",
		"add.out": "decoded: 48 01 D9\n",
	})

	out, code := s.run(t, append([]string{"verify"}, s.runFlags("--diff")...)...)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, out, "FAILED: 'add.in' [48 01 D8]")
	assert.Contains(t, out, "decoded: 48 01 D9")
	assert.Contains(t, out, "0 passed, 1 failed, 1 total")
}

func TestRebaseThenVerify(t *testing.T) {
	s := newSuite(t, map[string]string{
		"add.in":  "48 01 D8\n",
		"add.out": "stale\n",
		"ret.in":  "C3\n",
	})

	out, code := s.run(t, append([]string{"rebase"}, s.runFlags()...)...)
	require.Equal(t, ExitSuccess, code, out)
	assert.Contains(t, out, "2 rebased, 0 failed, 2 total")

	data, err := os.ReadFile(filepath.Join(s.cases, "add.out"))
	require.NoError(t, err)
	assert.Equal(t, "decoded: 48 01 D8\n", string(data))
	data, err = os.ReadFile(filepath.Join(s.cases, "ret.out"))
	require.NoError(t, err)
	assert.Equal(t, "decoded: C3\n", string(data))

	out, code = s.run(t, append([]string{"verify"}, s.runFlags()...)...)
	assert.Equal(t, ExitSuccess, code, out)
}

func TestUpdateAliasRebases(t *testing.T) {
	s := newSuite(t, map[string]string{
		"nop.in": "90\n",
	})

	_, code := s.run(t, append([]string{"update"}, s.runFlags()...)...)
	require.Equal(t, ExitSuccess, code)
	assert.FileExists(t, filepath.Join(s.cases, "nop.out"))
}

func TestCommandErrors(t *testing.T) {
	s := newSuite(t, nil)

	tests := []struct {
		name string
		args []string
	}{
		{
			name: "missing case directory",
			args: []string{"verify", "--tool", s.tool, "--cases", filepath.Join(s.cases, "nope")},
		},
		{
			name: "missing tool setting",
			args: []string{"verify", "--cases", s.cases},
		},
		{
			name: "invalid suffix",
			args: []string{"verify", "--tool", s.tool, "--cases", s.cases, "--input-suffix", "in"},
		},
		{
			name: "invalid filter",
			args: []string{"verify", "--tool", s.tool, "--cases", s.cases, "--filter", "["},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GOLDENRUN_TOOL", "")
			_, code := s.run(t, tt.args...)
			assert.Equal(t, ExitCommandError, code)
		})
	}
}

func TestToolUnavailable(t *testing.T) {
	s := newSuite(t, map[string]string{
		"add.in":  "48 01 D8\n",
		"add.out": "decoded: 48 01 D8\n",
	})

	out, code := s.run(t, "verify", "--tool", filepath.Join(s.cases, "no-such-tool"), "--cases", s.cases)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, out, "tool unavailable")

	out, code = s.run(t, "rebase", "--tool", filepath.Join(s.cases, "no-such-tool"), "--cases", s.cases)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, out, "tool unavailable")

	data, err := os.ReadFile(filepath.Join(s.cases, "add.out"))
	require.NoError(t, err)
	assert.Equal(t, "decoded: 48 01 D8\n", string(data))
}

func TestCasesCommand(t *testing.T) {
	s := newSuite(t, map[string]string{
		"add.in":  "48 01 D8\n",
		"add.out": "decoded: 48 01 D8\n",
		"ret.in":  "C3\n",
	})

	out, code := s.run(t, "cases", "--cases", s.cases)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "ok       add\n")
	assert.Contains(t, out, "missing  ret\n")
	assert.Contains(t, out, "2 cases, 1 without baseline")
}

func TestHistoryListAndView(t *testing.T) {
	s := newSuite(t, map[string]string{
		"add.in":  "48 01 D8\n",
		"add.out": "decoded: 48 01 D9\n",
		"nop.in":  "90\n",
		"nop.out": "decoded: 90\n",
	})

	out, _ := s.run(t, "list")
	assert.Contains(t, out, "No runs found")

	_, code := s.run(t, append([]string{"verify"}, s.runFlags()...)...)
	require.Equal(t, ExitFailure, code)

	out, code = s.run(t, "list")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "=== History (1 total) ===")
	assert.Contains(t, out, "Cases: 1 ok, 1 failed")
	assert.Contains(t, out, "exit=1")

	out, code = s.run(t, "list", "--mode", "rebase")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "No rebase runs found")

	out, code = s.run(t, "view")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "FAILED: 'add.in' [48 01 D8]")
	assert.Contains(t, out, "diff (-baseline +recorded):")
	assert.NotContains(t, out, "'nop.in'")

	out, code = s.run(t, "view", "0", "--no-diff")
	require.Equal(t, ExitSuccess, code)
	assert.NotContains(t, out, "diff (-baseline +recorded):")

	_, code = s.run(t, "view", "-1")
	assert.Equal(t, ExitCommandError, code)
}

func TestNoHistory(t *testing.T) {
	s := newSuite(t, map[string]string{
		"nop.in":  "90\n",
		"nop.out": "decoded: 90\n",
	})

	_, code := s.run(t, append([]string{"verify"}, s.runFlags("--no-history")...)...)
	require.Equal(t, ExitSuccess, code)
	assert.NoDirExists(t, s.historyDir)
}

func TestConfigFile(t *testing.T) {
	s := newSuite(t, map[string]string{
		"nop.case":   "90\n",
		"nop.expect": "decoded: 90\n",
	})

	cfgPath := filepath.Join(t.TempDir(), "goldenrun.yaml")
	cfg := "tool: " + s.tool + "\ncases: " + s.cases + "\ninput_suffix: .case\noutput_suffix: .expect\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	out, code := s.run(t, "--config", cfgPath, "verify")
	assert.Equal(t, ExitSuccess, code, out)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}
