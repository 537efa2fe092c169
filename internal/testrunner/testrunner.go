// Package testrunner executes the project's test command in a
// controlled environment and reports pass/fail with captured output.
package testrunner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mfateev/autodev-temporal-go/internal/runner"
	"github.com/mfateev/autodev-temporal-go/internal/shell"
)

// DefaultCommand is run when no test command is configured.
const DefaultCommand = "go test ./..."

// DefaultTimeout bounds a test run.
const DefaultTimeout = 10 * time.Minute

// tmpDirName is the repo-local temporary directory exported to the
// test process, avoiding system-wide temp permission issues.
const tmpDirName = ".tmp_tests"

// Result is the outcome of a test run.
type Result struct {
	Passed   bool   `json:"passed"`
	Skipped  bool   `json:"skipped"`
	ExitCode int    `json:"exit_code"`
	Output   string `json:"output,omitempty"`
}

// Runner executes test commands in a working directory.
type Runner struct {
	Dir     string
	Command string
	Timeout time.Duration
}

// New creates a Runner for dir; empty command means DefaultCommand.
func New(dir, command string) *Runner {
	if command == "" {
		command = DefaultCommand
	}
	return &Runner{Dir: dir, Command: command, Timeout: DefaultTimeout}
}

// SkipRequested reports whether the SKIP_TESTS environment variable
// asks to skip test execution.
func SkipRequested() bool {
	switch strings.ToLower(os.Getenv("SKIP_TESTS")) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// Run executes the test command through the user's shell. A failing
// test command is a failed Result, not an error; errors are reserved
// for being unable to run the command at all.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if SkipRequested() {
		return &Result{Passed: true, Skipped: true}, nil
	}

	tmpDir := filepath.Join(r.Dir, tmpDirName)
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create test tmp dir: %w", err)
	}

	userShell := shell.Detect()
	res, err := runner.Run(ctx, runner.Opts{
		Command: userShell.ExecArgs(r.Command, true),
		Dir:     r.Dir,
		Env: map[string]string{
			"TMPDIR": tmpDir,
			"TMP":    tmpDir,
			"TEMP":   tmpDir,
		},
		Timeout: r.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("run tests: %w", err)
	}

	out := string(res.Output)
	if res.OmittedBytes > 0 {
		out += fmt.Sprintf("\n[... %d bytes of output omitted ...]\n", res.OmittedBytes)
	}
	if res.TimedOut {
		return &Result{Passed: false, ExitCode: res.ExitCode,
			Output: out + fmt.Sprintf("\n[test command timed out after %s]\n", r.Timeout)}, nil
	}

	return &Result{
		Passed:   res.ExitCode == 0,
		ExitCode: res.ExitCode,
		Output:   out,
	}, nil
}
