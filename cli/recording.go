package cli

// This file contains run recording functionality for saving run metadata
// and the captured output of failed cases to the history directory.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goldenrun/goldenrun/history"
	"github.com/goldenrun/goldenrun/model"
)

// recordHistory stores the run below <historyDir>/history and returns the
// directory it was written to.
func (a *App) recordHistory(historyDir string, h *model.History, summary *model.Summary) (string, error) {
	runDir := filepath.Join(history.Root(historyDir), runDirName(h))
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	h.Verdicts = summary.Verdicts

	// Output of failing verify cases is kept for view.
	if summary.Mode == model.ModeVerify {
		for _, v := range summary.Verdicts {
			if !v.Failed() {
				continue
			}
			if !toolRan(v) {
				continue
			}
			// Empty output still gets an artifact.
			if err := a.saveArtifact(runDir, h, v.Case, model.ArtifactTypeActualOutput, v.Actual); err != nil {
				a.logger.Warn().Err(err).Str("case", v.Case).Msg("Failed to save output")
			}
			if len(v.Stderr) == 0 {
				continue
			}
			if err := a.saveArtifact(runDir, h, v.Case, model.ArtifactTypeStderr, v.Stderr); err != nil {
				a.logger.Warn().Err(err).Str("case", v.Case).Msg("Failed to save stderr")
			}
		}
	}

	metadataPath := filepath.Join(runDir, history.MetadataFile)
	metadataJSON, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.WriteFile(metadataPath, metadataJSON, 0644); err != nil {
		return "", fmt.Errorf("failed to write history metadata: %w", err)
	}

	return runDir, nil
}

func (a *App) saveArtifact(runDir string, h *model.History, caseID string, t model.ArtifactType, data []byte) error {
	name := caseID + artifactExt(t)
	if err := os.WriteFile(filepath.Join(runDir, name), data, 0644); err != nil {
		return err
	}

	h.Artifacts = append(h.Artifacts, model.Artifact{
		Type: t,
		Case: caseID,
		Size: uint64(len(data)),
		File: name,
	})
	return nil
}

// toolRan reports whether the verdict carries captured tool output.
func toolRan(v model.Verdict) bool {
	switch v.Reason {
	case model.ReasonMismatch, model.ReasonMissingBaseline, model.ReasonExitCode:
		return true
	}
	return false
}

func artifactExt(t model.ArtifactType) string {
	switch t {
	case model.ArtifactTypeStderr:
		return ".stderr"
	default:
		return ".actual"
	}
}

// runDirName is <timestamp>-<commit>-<id>, both hashes shortened.
func runDirName(h *model.History) string {
	timestamp := h.Timestamp.Format("20060102-150405")
	shortCommit := "nogit"
	if h.Git != nil && h.Git.Commit != "" {
		shortCommit = shorten(h.Git.Commit)
	}
	return fmt.Sprintf("%s-%s-%s", timestamp, shortCommit, shorten(h.ID))
}

func shorten(s string) string {
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
