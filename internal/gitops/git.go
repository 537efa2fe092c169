// Package gitops wraps the git subprocess operations the pipeline
// needs: branch creation, patch application, commit, push, and remote
// parsing. Git itself stays the authority on every operation; errors
// carry the command's combined output so failures are diagnosable
// from the run log.
package gitops

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Repo runs git commands against a single working tree.
type Repo struct {
	dir string
}

// Open returns a Repo rooted at dir. The directory does not need to
// be the repository root; git resolves upwards.
func Open(dir string) *Repo {
	return &Repo{dir: dir}
}

// Dir returns the directory the repo operates in.
func (r *Repo) Dir() string { return r.dir }

// run executes a git subcommand and returns its combined output.
func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("git %s: %w: %s",
			strings.Join(args, " "), err, strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}

// Root returns the repository top-level directory, or "" when dir is
// not inside a git repository.
func (r *Repo) Root(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		if strings.Contains(out, "not a git repository") {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the checked-out branch name.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CreateBranch creates and checks out a new branch.
func (r *Repo) CreateBranch(ctx context.Context, name string) error {
	_, err := r.run(ctx, "checkout", "-b", name)
	return err
}

// Checkout switches to an existing branch.
func (r *Repo) Checkout(ctx context.Context, name string) error {
	_, err := r.run(ctx, "checkout", name)
	return err
}

// Apply writes patchText to a temporary file and applies it to the
// working tree and index.
func (r *Repo) Apply(ctx context.Context, patchText string) error {
	if strings.TrimSpace(patchText) == "" {
		return fmt.Errorf("empty patch")
	}

	f, err := os.CreateTemp("", "autodev-*.patch")
	if err != nil {
		return fmt.Errorf("create patch file: %w", err)
	}
	defer os.Remove(f.Name())

	// git is picky about patches without a trailing newline.
	if !strings.HasSuffix(patchText, "\n") {
		patchText += "\n"
	}
	if _, err := f.WriteString(patchText); err != nil {
		f.Close()
		return fmt.Errorf("write patch file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close patch file: %w", err)
	}

	_, err = r.run(ctx, "apply", "--index", f.Name())
	return err
}

// CommitAll stages everything and commits with the given message.
func (r *Repo) CommitAll(ctx context.Context, message string) error {
	if _, err := r.run(ctx, "add", "-A"); err != nil {
		return err
	}
	_, err := r.run(ctx, "commit", "-m", message)
	return err
}

// Push pushes the branch to origin with upstream tracking.
func (r *Repo) Push(ctx context.Context, branch string) error {
	_, err := r.run(ctx, "push", "-u", "origin", branch)
	return err
}

// RemoteURL returns the origin remote URL, or "" when no origin
// remote is configured.
func (r *Repo) RemoteURL(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "remote", "get-url", "origin")
	if err != nil {
		if strings.Contains(out, "No such remote") || strings.Contains(out, "no such remote") {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ParseGitHubRemote extracts owner and repository name from an ssh
// (git@github.com:owner/repo.git) or https
// (https://github.com/owner/repo.git) remote URL.
func ParseGitHubRemote(remoteURL string) (owner, repo string, err error) {
	path := remoteURL

	switch {
	case strings.HasPrefix(remoteURL, "git@"):
		_, after, found := strings.Cut(remoteURL, ":")
		if !found {
			return "", "", fmt.Errorf("unrecognised remote URL: %s", remoteURL)
		}
		path = after
	case strings.HasPrefix(remoteURL, "http://"), strings.HasPrefix(remoteURL, "https://"):
		parts := strings.Split(strings.TrimSuffix(remoteURL, "/"), "/")
		if len(parts) < 2 {
			return "", "", fmt.Errorf("unrecognised remote URL: %s", remoteURL)
		}
		path = parts[len(parts)-2] + "/" + parts[len(parts)-1]
	}

	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, ".git")

	owner, repo, found := strings.Cut(path, "/")
	if !found || owner == "" || repo == "" {
		return "", "", fmt.Errorf("cannot parse owner/repo from remote URL: %s", remoteURL)
	}
	return owner, repo, nil
}
