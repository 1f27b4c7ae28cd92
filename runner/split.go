package runner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/mattn/go-shellwords"
)

// ErrInvalidCommandLine is returned when a command line cannot be split into words.
var ErrInvalidCommandLine = errors.New("invalid command line")

// SplitCommandLine splits line into words following POSIX shell lexical
// rules: quotes group words containing spaces and backslash escapes the next
// character. Inside double quotes a backslash only escapes $ ` " \ and
// newline. Environment expansion and command substitution are not
// performed. Shell operators (; & | < >) are rejected rather than silently
// truncating the line.
func SplitCommandLine(line string) ([]string, error) {
	if err := checkOperators(line); err != nil {
		return nil, err
	}

	// Input files written on Windows end in CRLF.
	args, err := shellquote.Split(strings.ReplaceAll(line, "\r\n", "\n"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommandLine, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidCommandLine)
	}
	return args, nil
}

// checkOperators fails if line contains an unquoted shell operator.
func checkOperators(line string) error {
	p := shellwords.NewParser()
	p.ParseEnv = false
	p.ParseBacktick = false

	if _, err := p.Parse(line); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCommandLine, err)
	}
	if p.Position >= 0 {
		return fmt.Errorf("%w: unsupported shell operator at offset %d", ErrInvalidCommandLine, p.Position)
	}
	return nil
}
