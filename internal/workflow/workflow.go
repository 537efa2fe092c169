// Package workflow contains the Temporal workflow driving a run: the
// sequential per-persona patch pipeline, the ordered event log the
// CLI polls, and the approval gate for policy-flagged patches.
package workflow

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/mfateev/autodev-temporal-go/internal/activities"
	"github.com/mfateev/autodev-temporal-go/internal/models"
	"github.com/mfateev/autodev-temporal-go/internal/policy"
)

// Query and signal names exposed to the CLI.
const (
	QueryGetRunEvents = "get_run_events"
	QueryGetRunStatus = "get_run_status"

	SignalApproval = "approval_decision"
	SignalCancel   = "cancel_run"
)

// branchTimeFormat names branches agent/<persona>/<timestamp>.
const branchTimeFormat = "20060102-150405"

// ApprovalDecision is the signal payload answering a pending approval.
type ApprovalDecision struct {
	PersonaID string `json:"persona_id"`
	Approved  bool   `json:"approved"`
}

// PendingApproval describes the patch waiting for a decision,
// surfaced through the status query so the CLI can prompt.
type PendingApproval struct {
	PersonaID string   `json:"persona_id"`
	Files     []string `json:"files"`
	Reason    string   `json:"reason,omitempty"`
}

// RunStatus is the coarse run state returned by get_run_status.
type RunStatus struct {
	Phase           models.RunPhase  `json:"phase"`
	PersonaID       string           `json:"persona_id,omitempty"`
	PersonasDone    int              `json:"personas_done"`
	PersonasTotal   int              `json:"personas_total"`
	PendingApproval *PendingApproval `json:"pending_approval,omitempty"`
	LastBranch      string           `json:"last_branch,omitempty"`
	PRURL           string           `json:"pr_url,omitempty"`
}

// RunResult is the workflow return value.
type RunResult struct {
	Outcomes    []models.PersonaOutcome `json:"outcomes"`
	TestsPassed bool                    `json:"tests_passed"`
	TestsRan    bool                    `json:"tests_ran"`
	PRURL       string                  `json:"pr_url,omitempty"`
	Cancelled   bool                    `json:"cancelled,omitempty"`
}

// runState is the in-workflow mutable state. It never crosses the
// data-converter boundary whole; queries return snapshots of it.
type runState struct {
	input  models.RunInput
	events []models.RunEvent
	seq    int

	phase         models.RunPhase
	personaID     string
	personasDone  int
	personasTotal int

	pendingApproval  *PendingApproval
	approvalDecision *ApprovalDecision
	cancelled        bool

	repo         activities.RepoInfoOutput
	policySource string

	lastAppliedBranch string
	lastPushedBranch  string
	outcomes          []models.PersonaOutcome
	prURL             string
}

// addEvent appends a run event with the next sequence number.
func (s *runState) addEvent(ev models.RunEvent) {
	s.seq++
	ev.Seq = s.seq
	s.events = append(s.events, ev)
}

func (s *runState) status() RunStatus {
	return RunStatus{
		Phase:           s.phase,
		PersonaID:       s.personaID,
		PersonasDone:    s.personasDone,
		PersonasTotal:   s.personasTotal,
		PendingApproval: s.pendingApproval,
		LastBranch:      s.lastAppliedBranch,
		PRURL:           s.prURL,
	}
}

// defaultActivityOptions covers the quick worker-local activities:
// persona and policy loading, git operations, history writes.
func defaultActivityOptions(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
	})
}

// llmActivityOptions allows for slow model responses and retries
// transient provider failures.
func llmActivityOptions(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 5 * time.Second,
			MaximumAttempts: 3,
		},
	})
}

// testActivityOptions runs the test command once; a failing test
// suite is a result, so retries would only repeat the failure.
func testActivityOptions(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 15 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
}

// AutoDevWorkflow runs the persona pipeline for one task: per persona
// generate a patch, optionally apply it on a fresh branch, commit and
// push, then run tests and open a pull request for the last pushed
// branch.
func AutoDevWorkflow(ctx workflow.Context, input models.RunInput) (RunResult, error) {
	logger := workflow.GetLogger(ctx)
	s := &runState{input: input, phase: models.PhaseStarting}

	if err := workflow.SetQueryHandler(ctx, QueryGetRunEvents, func() ([]models.RunEvent, error) {
		return s.events, nil
	}); err != nil {
		return RunResult{}, err
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetRunStatus, func() (RunStatus, error) {
		return s.status(), nil
	}); err != nil {
		return RunResult{}, err
	}

	// Drain signals into state; the pipeline observes it via Await.
	workflow.Go(ctx, func(gctx workflow.Context) {
		ch := workflow.GetSignalChannel(gctx, SignalApproval)
		for {
			var d ApprovalDecision
			ch.Receive(gctx, &d)
			s.approvalDecision = &d
		}
	})
	workflow.Go(ctx, func(gctx workflow.Context) {
		ch := workflow.GetSignalChannel(gctx, SignalCancel)
		for {
			ch.Receive(gctx, nil)
			s.cancelled = true
		}
	})

	personas, err := resolvePersonas(ctx, s)
	if err != nil {
		return s.fail(err)
	}
	s.personasTotal = len(personas)

	if s.input.Options.Apply && !s.input.Options.DryRun {
		if err := prepareRepo(ctx, s); err != nil {
			return s.fail(err)
		}
	}

	for _, p := range personas {
		if s.cancelled {
			logger.Info("Run cancelled", "persona", p.ID)
			break
		}
		if err := runPersona(ctx, s, p); err != nil {
			return s.fail(err)
		}
		s.personasDone++
	}
	s.personaID = ""

	result := RunResult{Outcomes: s.outcomes, Cancelled: s.cancelled}

	if !s.cancelled {
		testsOK, ran, err := runTests(ctx, s)
		if err != nil {
			return s.fail(err)
		}
		result.TestsPassed = testsOK
		result.TestsRan = ran

		if err := openPullRequest(ctx, s, testsOK); err != nil {
			return s.fail(err)
		}
		result.PRURL = s.prURL
	}

	s.phase = models.PhaseComplete
	logger.Info("Run complete",
		"personas", s.personasDone,
		"tests_passed", result.TestsPassed,
		"pr_url", result.PRURL)
	return result, nil
}

func (s *runState) fail(err error) (RunResult, error) {
	s.phase = models.PhaseFailed
	s.addEvent(models.RunEvent{
		Kind:      models.EventError,
		PersonaID: s.personaID,
		Message:   err.Error(),
	})
	return RunResult{Outcomes: s.outcomes}, err
}

// resolvePersonas uses the input personas when provided, otherwise
// loads them worker-side (built-in defaults when no path is set).
func resolvePersonas(ctx workflow.Context, s *runState) ([]models.Persona, error) {
	if len(s.input.Personas) > 0 {
		return s.input.Personas, nil
	}

	var out activities.LoadPersonasOutput
	err := workflow.ExecuteActivity(defaultActivityOptions(ctx), "LoadPersonas",
		activities.LoadPersonasInput{Path: s.input.PersonasPath}).Get(ctx, &out)
	if err != nil {
		return nil, fmt.Errorf("load personas: %w", err)
	}
	return out.Personas, nil
}

// prepareRepo inspects the working directory and loads the patch
// policy once, so every persona is judged by the same snapshot.
func prepareRepo(ctx workflow.Context, s *runState) error {
	actCtx := defaultActivityOptions(ctx)

	var info activities.RepoInfoOutput
	if err := workflow.ExecuteActivity(actCtx, "RepoInfo",
		activities.RepoInfoInput{Dir: s.input.Cwd}).Get(ctx, &info); err != nil {
		return fmt.Errorf("inspect repository: %w", err)
	}
	if !info.IsRepo {
		return fmt.Errorf("%s is not a git repository; cannot apply patches", s.input.Cwd)
	}
	s.repo = info

	var pol activities.LoadPolicyOutput
	policyPath := info.Root + "/" + policy.DefaultFileName
	if err := workflow.ExecuteActivity(actCtx, "LoadPolicy",
		activities.LoadPolicyInput{Path: policyPath}).Get(ctx, &pol); err != nil {
		return fmt.Errorf("load patch policy: %w", err)
	}
	s.policySource = pol.Source
	return nil
}

// baseBranch is where the tree returns between personas and what
// pull requests merge into.
func (s *runState) baseBranch() string {
	if s.input.Options.BaseBranch != "" {
		return s.input.Options.BaseBranch
	}
	if s.repo.CurrentBranch != "" {
		return s.repo.CurrentBranch
	}
	return "main"
}
