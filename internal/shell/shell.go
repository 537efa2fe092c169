// Package shell detects the user's shell and derives exec arguments
// for running command strings through it. Linux/macOS only.
package shell

import (
	"os"
	"os/exec"
	"path/filepath"
)

// Type enumerates the supported shell flavours.
type Type int

const (
	TypeBash Type = iota
	TypeZsh
	TypeSh
)

// Shell is a detected shell with its binary path.
type Shell struct {
	Type Type
	Path string
}

// Name returns the short name of the shell ("bash", "zsh", "sh").
func (s *Shell) Name() string {
	switch s.Type {
	case TypeBash:
		return "bash"
	case TypeZsh:
		return "zsh"
	default:
		return "sh"
	}
}

// ExecArgs builds the argument vector that runs a command string
// through this shell. With login=true the shell is invoked as -lc so
// user profile setup (PATH additions for local LLM tools, test
// runners) is in effect.
func (s *Shell) ExecArgs(command string, login bool) []string {
	if login {
		return []string{s.Path, "-lc", command}
	}
	return []string{s.Path, "-c", command}
}

// detectType maps a shell binary path (or bare name) to a Type.
func detectType(shellPath string) (Type, bool) {
	switch filepath.Base(shellPath) {
	case "bash":
		return TypeBash, true
	case "zsh":
		return TypeZsh, true
	case "sh":
		return TypeSh, true
	default:
		return 0, false
	}
}

// Detect returns the user's default shell from $SHELL, falling back to
// bash and then sh when $SHELL is unset or unrecognised.
func Detect() *Shell {
	if env := os.Getenv("SHELL"); env != "" {
		if st, ok := detectType(env); ok {
			return &Shell{Type: st, Path: env}
		}
	}

	for _, c := range []struct {
		name string
		st   Type
	}{
		{"bash", TypeBash},
		{"sh", TypeSh},
	} {
		if p, err := exec.LookPath(c.name); err == nil {
			return &Shell{Type: c.st, Path: p}
		}
	}

	return &Shell{Type: TypeSh, Path: "/bin/sh"}
}
