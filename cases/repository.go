// Package cases enumerates regression cases stored as paired files in a
// flat directory: <id><input suffix> holds the tool arguments and
// <id><output suffix> holds the accepted output.
package cases

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goldenrun/goldenrun/model"
)

// ErrBaselineMissing is returned when the expected output of a case does not
// exist or cannot be read.
var ErrBaselineMissing = errors.New("expected output missing")

// Repository gives access to the cases of one directory.
type Repository struct {
	dir          string
	inputSuffix  string
	outputSuffix string
}

// Open returns a Repository for dir. It fails if dir is not an existing directory.
func Open(dir, inputSuffix, outputSuffix string) (*Repository, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("case directory not found: %s", dir)
		}
		return nil, fmt.Errorf("failed to access case directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("case directory is not a directory: %s", dir)
	}
	if inputSuffix == "" || outputSuffix == "" || inputSuffix == outputSuffix {
		return nil, fmt.Errorf("invalid case suffixes %q and %q", inputSuffix, outputSuffix)
	}

	return &Repository{
		dir:          dir,
		inputSuffix:  inputSuffix,
		outputSuffix: outputSuffix,
	}, nil
}

func (r *Repository) Dir() string {
	return r.dir
}

// List returns the IDs of all cases, sorted.
func (r *Repository) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read case directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, r.inputSuffix) {
			continue
		}
		id := strings.TrimSuffix(name, r.inputSuffix)
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}

	sort.Strings(ids)
	return ids, nil
}

// ListMatching returns the IDs matching the glob pattern. An empty pattern
// matches everything.
func (r *Repository) ListMatching(pattern string) ([]string, error) {
	ids, err := r.List()
	if err != nil || pattern == "" {
		return ids, err
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid filter pattern %q: %w", pattern, err)
	}

	matched := ids[:0]
	for _, id := range ids {
		if ok, _ := filepath.Match(pattern, id); ok {
			matched = append(matched, id)
		}
	}
	return matched, nil
}

func (r *Repository) InputPath(id string) string {
	return filepath.Join(r.dir, id+r.inputSuffix)
}

func (r *Repository) ExpectedOutputPath(id string) string {
	return filepath.Join(r.dir, id+r.outputSuffix)
}

// LoadInput reads the input file of a case as text.
func (r *Repository) LoadInput(id string) (string, error) {
	data, err := os.ReadFile(r.InputPath(id))
	if err != nil {
		return "", fmt.Errorf("failed to read input of %s: %w", id, err)
	}
	return string(data), nil
}

// Load returns the case with its input text.
func (r *Repository) Load(id string) (model.TestCase, error) {
	tc := model.TestCase{
		ID:           id,
		InputPath:    r.InputPath(id),
		ExpectedPath: r.ExpectedOutputPath(id),
	}
	input, err := r.LoadInput(id)
	if err != nil {
		return tc, err
	}
	tc.Input = input
	return tc, nil
}

// ReadExpected returns the accepted output of a case. Missing or unreadable
// files yield ErrBaselineMissing; other I/O errors are returned as they are.
func (r *Repository) ReadExpected(id string) ([]byte, error) {
	path := r.ExpectedOutputPath(id)
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return nil, fmt.Errorf("%w: %s", ErrBaselineMissing, path)
	}
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrBaselineMissing, path)
	}
	return nil, fmt.Errorf("failed to read expected output of %s: %w", id, err)
}

// HasExpected reports whether the accepted output of a case exists.
func (r *Repository) HasExpected(id string) bool {
	info, err := os.Stat(r.ExpectedOutputPath(id))
	return err == nil && !info.IsDir()
}

// WriteExpected replaces the accepted output of a case.
func (r *Repository) WriteExpected(id string, data []byte) error {
	if err := os.WriteFile(r.ExpectedOutputPath(id), data, 0644); err != nil {
		return fmt.Errorf("failed to write expected output of %s: %w", id, err)
	}
	return nil
}
