package activities

import (
	"context"

	"github.com/mfateev/autodev-temporal-go/internal/hosting"
	"github.com/mfateev/autodev-temporal-go/internal/history"
	"github.com/mfateev/autodev-temporal-go/internal/models"
	"github.com/mfateev/autodev-temporal-go/internal/policy"
	"github.com/mfateev/autodev-temporal-go/internal/testrunner"
)

// ---------------------------------------------------------------------------
// Patch policy
// ---------------------------------------------------------------------------

// PolicyActivities evaluates the repository's patch policy.
type PolicyActivities struct{}

// NewPolicyActivities creates a new PolicyActivities instance.
func NewPolicyActivities() *PolicyActivities {
	return &PolicyActivities{}
}

// LoadPolicyInput is the input for the LoadPolicy activity.
type LoadPolicyInput struct {
	Path string `json:"path"`
}

// LoadPolicyOutput carries the policy source back to the workflow so
// every persona in a run is judged by the same policy snapshot.
type LoadPolicyOutput struct {
	Source string `json:"source,omitempty"`
}

// LoadPolicy reads the policy file and validates that it compiles.
func (a *PolicyActivities) LoadPolicy(_ context.Context, input LoadPolicyInput) (LoadPolicyOutput, error) {
	source, err := policy.LoadSource(input.Path)
	if err != nil {
		return LoadPolicyOutput{}, err
	}
	if _, err := policy.Compile(source); err != nil {
		return LoadPolicyOutput{}, err
	}
	return LoadPolicyOutput{Source: source}, nil
}

// CheckPatchPolicyInput is the input for the CheckPatchPolicy activity.
type CheckPatchPolicyInput struct {
	Source string   `json:"source,omitempty"`
	Files  []string `json:"files"`
}

// CheckPatchPolicyOutput is the output from the CheckPatchPolicy
// activity. A policy that errors at evaluation time denies the patch
// rather than failing the run.
type CheckPatchPolicyOutput struct {
	Verdict policy.Verdict `json:"verdict"`
	Reason  string         `json:"reason,omitempty"`
}

// CheckPatchPolicy evaluates the policy against the files a patch
// touches.
func (a *PolicyActivities) CheckPatchPolicy(_ context.Context, input CheckPatchPolicyInput) (CheckPatchPolicyOutput, error) {
	pol, err := policy.Compile(input.Source)
	if err != nil {
		return CheckPatchPolicyOutput{}, err
	}

	verdict, err := pol.Check(input.Files)
	if err != nil {
		return CheckPatchPolicyOutput{Verdict: policy.VerdictDeny, Reason: err.Error()}, nil
	}
	return CheckPatchPolicyOutput{Verdict: verdict}, nil
}

// ---------------------------------------------------------------------------
// Test execution
// ---------------------------------------------------------------------------

// TestActivities runs the project's test command.
type TestActivities struct{}

// NewTestActivities creates a new TestActivities instance.
func NewTestActivities() *TestActivities {
	return &TestActivities{}
}

// RunTestsInput is the input for the RunTests activity.
type RunTestsInput struct {
	Dir     string `json:"dir"`
	Command string `json:"command,omitempty"`
}

// RunTestsOutput is the output from the RunTests activity.
type RunTestsOutput struct {
	Passed   bool   `json:"passed"`
	Skipped  bool   `json:"skipped"`
	ExitCode int    `json:"exit_code"`
	Output   string `json:"output,omitempty"`
}

// RunTests executes the test command on the current checkout.
// Failing tests are a failed output, not an activity error.
func (a *TestActivities) RunTests(ctx context.Context, input RunTestsInput) (RunTestsOutput, error) {
	res, err := testrunner.New(input.Dir, input.Command).Run(ctx)
	if err != nil {
		return RunTestsOutput{}, err
	}
	return RunTestsOutput{
		Passed:   res.Passed,
		Skipped:  res.Skipped,
		ExitCode: res.ExitCode,
		Output:   res.Output,
	}, nil
}

// ---------------------------------------------------------------------------
// Pull requests
// ---------------------------------------------------------------------------

// HostingActivities opens pull requests on the hosting provider.
type HostingActivities struct {
	client *hosting.GitHubClient
}

// NewHostingActivities creates hosting activities backed by client.
func NewHostingActivities(client *hosting.GitHubClient) *HostingActivities {
	return &HostingActivities{client: client}
}

// CreatePullRequestInput is the input for the CreatePullRequest
// activity.
type CreatePullRequestInput struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	Title string `json:"title"`
	Head  string `json:"head"`
	Base  string `json:"base"`
	Body  string `json:"body"`
}

// CreatePullRequestOutput is the output from the CreatePullRequest
// activity. Created is false when no token is configured, which
// downgrades PR creation to a skip instead of a failure.
type CreatePullRequestOutput struct {
	Created bool   `json:"created"`
	Number  int    `json:"number,omitempty"`
	URL     string `json:"url,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// CreatePullRequest opens a pull request for the pushed branch.
func (a *HostingActivities) CreatePullRequest(ctx context.Context, input CreatePullRequestInput) (CreatePullRequestOutput, error) {
	if !a.client.HasToken() {
		return CreatePullRequestOutput{Created: false, Reason: "no GitHub token configured"}, nil
	}

	pr, err := a.client.CreatePullRequest(ctx, hosting.PullRequestInput{
		Owner: input.Owner,
		Repo:  input.Repo,
		Title: input.Title,
		Head:  input.Head,
		Base:  input.Base,
		Body:  input.Body,
	})
	if err != nil {
		return CreatePullRequestOutput{}, err
	}
	return CreatePullRequestOutput{Created: true, Number: pr.Number, URL: pr.HTMLURL}, nil
}

// ---------------------------------------------------------------------------
// Run history
// ---------------------------------------------------------------------------

// HistoryActivities records per-persona outcomes.
type HistoryActivities struct {
	store *history.Store
}

// NewHistoryActivities creates history activities backed by store. A
// nil store turns recording into a no-op.
func NewHistoryActivities(store *history.Store) *HistoryActivities {
	return &HistoryActivities{store: store}
}

// RecordPersonaRun persists one persona outcome.
func (a *HistoryActivities) RecordPersonaRun(ctx context.Context, outcome models.PersonaOutcome) error {
	if a.store == nil {
		return nil
	}
	return a.store.Record(ctx, outcome)
}

// UpdatePersonaRunPRInput is the input for the UpdatePersonaRunPR
// activity.
type UpdatePersonaRunPRInput struct {
	RunID     string `json:"run_id"`
	PersonaID string `json:"persona_id"`
	PRURL     string `json:"pr_url"`
}

// UpdatePersonaRunPR stamps the pull-request URL on an already
// recorded outcome once the PR is opened after the persona loop.
func (a *HistoryActivities) UpdatePersonaRunPR(ctx context.Context, input UpdatePersonaRunPRInput) error {
	if a.store == nil {
		return nil
	}
	return a.store.SetPRURL(ctx, input.RunID, input.PersonaID, input.PRURL)
}
