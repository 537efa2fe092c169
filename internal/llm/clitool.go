package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mfateev/autodev-temporal-go/internal/runner"
	"github.com/mfateev/autodev-temporal-go/internal/shell"
)

// DefaultCLITimeout bounds a single CLI provider invocation.
const DefaultCLITimeout = 2 * time.Minute

// ErrNoCLICommand is returned when the cli provider is selected but
// no command is configured.
var ErrNoCLICommand = errors.New("cli provider selected but no command configured (set LLM_CLI_COMMAND)")

// CLIClient shells the prompt out to a user-configured command run
// through the detected user shell. The command reads the prompt on
// stdin and writes its response to stdout, which makes any local LLM
// tool usable as a provider.
type CLIClient struct {
	timeout time.Duration
}

// NewCLIClient creates a CLI-backed client.
func NewCLIClient() *CLIClient {
	return &CLIClient{timeout: DefaultCLITimeout}
}

// Call runs the configured command with the prompt on stdin.
func (c *CLIClient) Call(ctx context.Context, req Request) (Response, error) {
	command := req.Config.CLICommand
	if command == "" {
		return Response{}, ErrNoCLICommand
	}

	// Login shell so user profile PATH additions are visible.
	userShell := shell.Detect()
	res, err := runner.Run(ctx, runner.Opts{
		Command: userShell.ExecArgs(command, true),
		Stdin:   req.Prompt,
		Timeout: c.timeout,
	})
	if err != nil {
		return Response{}, fmt.Errorf("llm cli: %w", err)
	}
	if res.TimedOut {
		return Response{}, fmt.Errorf("llm cli command timed out after %s", c.timeout)
	}
	if res.ExitCode != 0 {
		return Response{}, fmt.Errorf("llm cli command exited %d: %s", res.ExitCode, tail(res.Output, 512))
	}

	return Response{Content: string(res.Output)}, nil
}

// tail returns the final n bytes of b as a string.
func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
