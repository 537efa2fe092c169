package activities

import (
	"context"

	"github.com/mfateev/autodev-temporal-go/internal/gitops"
)

// GitActivities contains the git mutations of the pipeline. Every
// activity takes the repository directory explicitly so the workflow
// state stays the single source of truth about where a run operates.
type GitActivities struct{}

// NewGitActivities creates a new GitActivities instance.
func NewGitActivities() *GitActivities {
	return &GitActivities{}
}

// RepoInfoInput is the input for the RepoInfo activity.
type RepoInfoInput struct {
	Dir string `json:"dir"`
}

// RepoInfoOutput describes the repository the run operates in.
// IsRepo is false when Dir is not inside a git working tree; Owner
// and Repo are empty when origin is missing or not a GitHub remote.
type RepoInfoOutput struct {
	IsRepo        bool   `json:"is_repo"`
	Root          string `json:"root,omitempty"`
	CurrentBranch string `json:"current_branch,omitempty"`
	RemoteURL     string `json:"remote_url,omitempty"`
	Owner         string `json:"owner,omitempty"`
	Repo          string `json:"repo,omitempty"`
}

// RepoInfo inspects the working directory once at the start of a run.
func (a *GitActivities) RepoInfo(ctx context.Context, input RepoInfoInput) (RepoInfoOutput, error) {
	repo := gitops.Open(input.Dir)

	root, err := repo.Root(ctx)
	if err != nil {
		return RepoInfoOutput{}, err
	}
	if root == "" {
		return RepoInfoOutput{}, nil
	}

	out := RepoInfoOutput{IsRepo: true, Root: root}

	if out.CurrentBranch, err = repo.CurrentBranch(ctx); err != nil {
		return RepoInfoOutput{}, err
	}

	remote, err := repo.RemoteURL(ctx)
	if err != nil {
		return RepoInfoOutput{}, err
	}
	out.RemoteURL = remote
	if remote != "" {
		if owner, name, perr := gitops.ParseGitHubRemote(remote); perr == nil {
			out.Owner, out.Repo = owner, name
		}
	}
	return out, nil
}

// PrepareBranchInput is the input for the PrepareBranch activity.
type PrepareBranchInput struct {
	Dir    string `json:"dir"`
	Branch string `json:"branch"`
}

// PrepareBranch creates and checks out the branch a persona's patch
// will land on.
func (a *GitActivities) PrepareBranch(ctx context.Context, input PrepareBranchInput) error {
	return gitops.Open(input.Dir).CreateBranch(ctx, input.Branch)
}

// ApplyPatchInput is the input for the ApplyPatch activity.
type ApplyPatchInput struct {
	Dir  string `json:"dir"`
	Diff string `json:"diff"`
}

// ApplyPatchOutput is the output from the ApplyPatch activity. A
// patch git refuses is a normal outcome, reported through Applied and
// Reason so the workflow can skip the persona without retrying.
type ApplyPatchOutput struct {
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

// ApplyPatch applies a unified diff to the working tree and index.
func (a *GitActivities) ApplyPatch(ctx context.Context, input ApplyPatchInput) (ApplyPatchOutput, error) {
	if err := gitops.Open(input.Dir).Apply(ctx, input.Diff); err != nil {
		return ApplyPatchOutput{Applied: false, Reason: err.Error()}, nil
	}
	return ApplyPatchOutput{Applied: true}, nil
}

// CommitInput is the input for the Commit activity.
type CommitInput struct {
	Dir     string `json:"dir"`
	Message string `json:"message"`
}

// Commit stages everything and commits.
func (a *GitActivities) Commit(ctx context.Context, input CommitInput) error {
	return gitops.Open(input.Dir).CommitAll(ctx, input.Message)
}

// PushBranchInput is the input for the PushBranch activity.
type PushBranchInput struct {
	Dir    string `json:"dir"`
	Branch string `json:"branch"`
}

// PushBranchOutput is the output from the PushBranch activity. A
// rejected push ends the persona's publication, not the run.
type PushBranchOutput struct {
	Pushed bool   `json:"pushed"`
	Reason string `json:"reason,omitempty"`
}

// PushBranch pushes the branch to origin with upstream tracking.
func (a *GitActivities) PushBranch(ctx context.Context, input PushBranchInput) (PushBranchOutput, error) {
	if err := gitops.Open(input.Dir).Push(ctx, input.Branch); err != nil {
		return PushBranchOutput{Pushed: false, Reason: err.Error()}, nil
	}
	return PushBranchOutput{Pushed: true}, nil
}

// CheckoutInput is the input for the Checkout activity.
type CheckoutInput struct {
	Dir    string `json:"dir"`
	Branch string `json:"branch"`
}

// Checkout returns the working tree to an existing branch, used to
// restore the base branch between personas.
func (a *GitActivities) Checkout(ctx context.Context, input CheckoutInput) error {
	return gitops.Open(input.Dir).Checkout(ctx, input.Branch)
}
