package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"
)

// neutralEnv is applied to every subprocess so output stays plain and
// non-interactive regardless of the user's environment.
var neutralEnv = map[string]string{
	"NO_COLOR":  "1",
	"TERM":      "dumb",
	"PAGER":     "cat",
	"GIT_PAGER": "cat",
}

// Opts configures a single subprocess run.
type Opts struct {
	// Command is the argv to execute. Required.
	Command []string
	// Dir is the working directory; empty means inherit.
	Dir string
	// Stdin is written to the process before closing its input.
	// Ignored in TTY mode.
	Stdin string
	// Env entries are appended on top of the inherited environment.
	Env map[string]string
	// TTY allocates a pseudo-terminal for tools that misbehave when
	// stdout is a pipe. Stdout and stderr are interleaved by the PTY.
	TTY bool
	// Timeout bounds the run; zero means no bound beyond ctx.
	Timeout time.Duration
	// MaxOutputBytes caps retained output; zero means DefaultMaxBytes.
	MaxOutputBytes int
}

// Result is the outcome of a completed (or timed-out) run.
type Result struct {
	Output   []byte
	ExitCode int
	TimedOut bool
	// OmittedBytes is how much output was dropped by the cap.
	OmittedBytes int
}

// Success reports whether the process exited zero without timing out.
func (r *Result) Success() bool {
	return r.ExitCode == 0 && !r.TimedOut
}

// Run executes opts.Command to completion. A non-zero exit is not an
// error; errors are reserved for failures to start or plumb the
// process. On timeout the partial output collected so far is returned
// with TimedOut set.
func Run(ctx context.Context, opts Opts) (*Result, error) {
	if len(opts.Command) == 0 {
		return nil, errors.New("runner: empty command")
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	maxBytes := opts.MaxOutputBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxBytes
	}
	buf := NewHeadTailBuffer(maxBytes)

	cmd := exec.CommandContext(ctx, opts.Command[0], opts.Command[1:]...)
	cmd.Dir = opts.Dir
	cmd.Env = buildEnv(opts.Env)

	var runErr error
	if opts.TTY {
		runErr = runPTY(cmd, buf)
	} else {
		runErr = runPipes(cmd, opts.Stdin, buf)
	}

	res := &Result{
		Output:       buf.Bytes(),
		OmittedBytes: buf.Omitted(),
	}

	if ctx.Err() != nil {
		res.TimedOut = errors.Is(ctx.Err(), context.DeadlineExceeded)
		res.ExitCode = -1
		return res, nil
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, fmt.Errorf("runner: %s: %w", opts.Command[0], runErr)
	}

	res.ExitCode = cmd.ProcessState.ExitCode()
	return res, nil
}

// runPipes wires stdout and stderr into the buffer and feeds stdin.
func runPipes(cmd *exec.Cmd, stdin string, buf *HeadTailBuffer) error {
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	cmd.Stdout = buf
	cmd.Stderr = buf
	return cmd.Run()
}

// runPTY runs the command under a pseudo-terminal, draining the PTY
// into the buffer until the process exits.
func runPTY(cmd *exec.Cmd, buf *HeadTailBuffer) error {
	f, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	defer f.Close()

	// Reading from the master returns EIO once the child closes its
	// side; treat that as EOF.
	_, copyErr := io.Copy(buf, f)
	waitErr := cmd.Wait()
	if waitErr != nil {
		return waitErr
	}
	if copyErr != nil && !isExpectedPTYError(copyErr) {
		return copyErr
	}
	return nil
}

func isExpectedPTYError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return true
	}
	return errors.Is(err, io.EOF)
}

func buildEnv(extra map[string]string) []string {
	env := os.Environ()
	for k, v := range neutralEnv {
		env = append(env, k+"="+v)
	}
	for k, v := range extra {
		env = append(env, k+"="+v)
	}
	return env
}
