// Package config holds the harness configuration: which tool to run, where
// the cases live and how they are named.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is picked up from the working directory when no
// configuration file is given explicitly.
const DefaultFileName = "goldenrun.yaml"

// Config is the harness configuration.
type Config struct {
	// Path of the disassembler executable
	Tool string `yaml:"tool"`
	// Directory holding the <id>.in / <id>.out pairs
	Cases string `yaml:"cases"`
	// Suffix marking an input file
	InputSuffix string `yaml:"input_suffix"`
	// Suffix of the accepted output file
	OutputSuffix string `yaml:"output_suffix"`
	// Per-case timeout, zero waits forever
	Timeout time.Duration `yaml:"timeout"`
	// Fail cases whose tool run exits non-zero
	CheckExitCode bool `yaml:"check_exit_code"`
	// Glob restricting the case IDs to run
	Filter string `yaml:"filter"`
	// Directory receiving run history, empty disables recording
	HistoryDir string `yaml:"history_dir"`
	// Exit with 255 instead of 1 when a case fails
	LegacyExitStatus bool `yaml:"legacy_exit_status"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Cases:        "./cases",
		InputSuffix:  ".in",
		OutputSuffix: ".out",
		HistoryDir:   ".goldenrun",
	}
}

// Load reads a YAML configuration file on top of the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration on top of the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration can drive a run.
func (c Config) Validate() error {
	var errs []error
	if c.Tool == "" {
		errs = append(errs, errors.New("tool path is required"))
	}
	if c.Cases == "" {
		errs = append(errs, errors.New("case directory is required"))
	}
	if !strings.HasPrefix(c.InputSuffix, ".") || len(c.InputSuffix) < 2 {
		errs = append(errs, fmt.Errorf("input suffix %q must start with a dot", c.InputSuffix))
	}
	if !strings.HasPrefix(c.OutputSuffix, ".") || len(c.OutputSuffix) < 2 {
		errs = append(errs, fmt.Errorf("output suffix %q must start with a dot", c.OutputSuffix))
	}
	if c.InputSuffix == c.OutputSuffix {
		errs = append(errs, fmt.Errorf("input and output suffix are both %q", c.InputSuffix))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout %s must not be negative", c.Timeout))
	}
	return errors.Join(errs...)
}
