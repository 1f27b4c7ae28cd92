package model

// TestCase is one paired (input, expected-output) unit of the suite.
type TestCase struct {
	// Identifier derived from the input file name, suffix stripped
	ID string `json:"id"`
	// Raw text of the input file
	Input string `json:"input"`
	// Path of the input file
	InputPath string `json:"input_path"`
	// Path of the accepted output (may not exist yet)
	ExpectedPath string `json:"expected_path"`
}

// Mode selects how every case of a run is processed.
type Mode string

const (
	ModeVerify Mode = "verify"
	ModeRebase Mode = "rebase"
)

// Status is the terminal state of a case.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusRebased Status = "rebased"
)

// Reason explains a failed verdict.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonMismatch        Reason = "mismatch"
	ReasonMissingBaseline Reason = "missing-baseline"
	ReasonToolUnavailable Reason = "tool-unavailable"
	ReasonTimeout         Reason = "timeout"
	ReasonExitCode        Reason = "exit-code"
	ReasonBadInput        Reason = "bad-input"
)

// Verdict is the outcome of a single case. It is created once when the
// case completes and never changed afterwards.
type Verdict struct {
	Case     string `json:"case"`
	File     string `json:"file"`
	Status   Status `json:"status"`
	Reason   Reason `json:"reason,omitempty"`
	Input    string `json:"input,omitempty"`
	Message  string `json:"message,omitempty"`
	ExitCode int    `json:"exit_code"`

	// Captured output, kept for diagnostics only
	Actual   []byte `json:"-"`
	Stderr   []byte `json:"-"`
	Expected []byte `json:"-"`
}

func (v Verdict) Failed() bool {
	return v.Status == StatusFailed
}

// Summary aggregates the verdicts of a run in processing order.
type Summary struct {
	Mode     Mode      `json:"mode"`
	Verdicts []Verdict `json:"verdicts"`
}

func (s *Summary) Add(v Verdict) {
	s.Verdicts = append(s.Verdicts, v)
}

// Failed reports whether any case failed.
func (s *Summary) Failed() bool {
	for _, v := range s.Verdicts {
		if v.Failed() {
			return true
		}
	}
	return false
}

// Counts returns the number of passed (or rebased) and failed cases.
func (s *Summary) Counts() (ok, failed int) {
	for _, v := range s.Verdicts {
		if v.Failed() {
			failed++
		} else {
			ok++
		}
	}
	return ok, failed
}

func (s *Summary) Total() int {
	return len(s.Verdicts)
}
