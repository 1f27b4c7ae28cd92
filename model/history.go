package model

import "time"

// History represents a single goldenrun execution (verify or rebase).
type History struct {
	// Unique ID for this execution (UUID)
	ID string `json:"id"`
	// Mode of the run
	Mode Mode `json:"mode"`
	// Timestamp when the execution started
	Timestamp time.Time `json:"timestamp"`
	// Command-line arguments (including command name)
	Args []string `json:"args"`
	// Working directory where command was run
	WorkDir string `json:"workdir"`
	// Exit code of the harness
	ExitCode int `json:"exit_code"`
	// Duration of execution
	Duration time.Duration `json:"duration"`
	// Git information
	Git *Git `json:"git,omitempty"`
	// Tool and case directory the run used
	Suite *Suite `json:"suite,omitempty"`
	// Per-case outcomes
	Verdicts []Verdict `json:"verdicts,omitempty"`
	// Artifacts generated during this run
	Artifacts []Artifact `json:"artifacts,omitempty"`
}

// Git contains git repository information
type Git struct {
	// Git commit hash at time of execution
	Commit string `json:"commit,omitempty"`
	// Git branch at time of execution
	Branch string `json:"branch,omitempty"`
}

// Suite describes what was exercised.
type Suite struct {
	// Tool invocation prefix, shell quoted
	Tool string `json:"tool"`
	// Case directory
	CaseDir string `json:"case_dir"`
	// Input and output suffixes
	InputSuffix  string `json:"input_suffix"`
	OutputSuffix string `json:"output_suffix"`
	// Glob filter applied to case IDs
	Filter string `json:"filter,omitempty"`
}

// Failures returns the failed verdicts in order.
func (h *History) Failures() []Verdict {
	var out []Verdict
	for _, v := range h.Verdicts {
		if v.Failed() {
			out = append(out, v)
		}
	}
	return out
}

// ArtifactType identifies the type of artifact
type ArtifactType uint8

const (
	ArtifactTypeActualOutput ArtifactType = iota
	ArtifactTypeStderr
)

// Artifact represents a file generated during execution
type Artifact struct {
	Type ArtifactType `json:"type"`
	Case string       `json:"case"`
	Size uint64       `json:"size"`
	File string       `json:"file"` // relative to run dir
}

// ArtifactFor returns the artifact of the given type recorded for a case.
func (h *History) ArtifactFor(caseID string, t ArtifactType) *Artifact {
	for i := range h.Artifacts {
		if h.Artifacts[i].Case == caseID && h.Artifacts[i].Type == t {
			return &h.Artifacts[i]
		}
	}
	return nil
}
