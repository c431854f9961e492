package xcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Result bundles everything a finished command produced.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Succeeded reports whether the command exited with status 0.
func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}

// Lines returns the transcript: stdout lines followed by stderr lines.
func (r Result) Lines() []string {
	return append(splitLines(r.Stdout), splitLines(r.Stderr)...)
}

// Runner executes external commands in a directory.
// A non-zero exit is reported through Result.ExitCode, not as an error; the
// error is reserved for commands that could not be started or were cut short
// by the context.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (Result, error)
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct {
	env []string // nil inherits the parent environment
}

// NewExecRunner creates a runner. A non-empty developerDir is exported as
// DEVELOPER_DIR so xcodebuild and xcrun pick that Xcode instead of the one
// selected with xcode-select.
func NewExecRunner(developerDir string) *ExecRunner {
	r := &ExecRunner{}
	if developerDir != "" {
		r.env = buildEnvWith("DEVELOPER_DIR", developerDir)
	}
	return r
}

// Run executes name with args in dir and captures stdout and stderr separately.
func (r *ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) (Result, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if r.env != nil {
		cmd.Env = r.env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		return res, fmt.Errorf("%s: %w", name, ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		res.ExitCode = -1
		return res, fmt.Errorf("%s: %w", name, err)
	}
	return res, nil
}

var _ Runner = (*ExecRunner)(nil)

// CommandLine renders a command the way it is echoed back to callers.
func CommandLine(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
