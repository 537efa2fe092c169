package workflow

import (
	"fmt"

	"go.temporal.io/sdk/workflow"

	"github.com/mfateev/autodev-temporal-go/internal/activities"
	"github.com/mfateev/autodev-temporal-go/internal/instructions"
	"github.com/mfateev/autodev-temporal-go/internal/models"
	"github.com/mfateev/autodev-temporal-go/internal/policy"
)

// runPersona executes the pipeline for one persona: prompt, patch
// generation, policy and approval gates, branch, apply, commit, push,
// history. Outcomes that end the persona without a change (no diff,
// denied patch, failed apply) are recorded as events and return nil;
// errors abort the whole run.
func runPersona(ctx workflow.Context, s *runState, p models.Persona) error {
	logger := workflow.GetLogger(ctx)
	s.personaID = p.ID
	s.phase = models.PhaseGenerating
	s.addEvent(models.RunEvent{Kind: models.EventPersonaStarted, PersonaID: p.ID, Message: p.Name})

	prompt := instructions.BuildPatchPrompt(p, s.input.Task, "")

	var gen activities.GeneratePatchOutput
	err := workflow.ExecuteActivity(llmActivityOptions(ctx), "GeneratePatch",
		activities.GeneratePatchInput{Prompt: prompt, Provider: s.input.Provider}).Get(ctx, &gen)
	if err != nil {
		return fmt.Errorf("persona %s: generate patch: %w", p.ID, err)
	}

	if !gen.Found {
		logger.Info("No patch in response", "persona", p.ID, "response_bytes", gen.RawBytes)
		s.addEvent(models.RunEvent{
			Kind:      models.EventPatchMissing,
			PersonaID: p.ID,
			Message:   fmt.Sprintf("response carried no diff block (%d bytes)", gen.RawBytes),
		})
		return nil
	}

	s.addEvent(models.RunEvent{
		Kind:      models.EventPatchGenerated,
		PersonaID: p.ID,
		Message:   fmt.Sprintf("%d files, %d bytes", len(gen.Patch.Files), len(gen.Patch.Diff)),
		Patch:     &gen.Patch,
	})

	outcome := models.PersonaOutcome{
		RunID:        workflow.GetInfo(ctx).WorkflowExecution.ID,
		PersonaID:    p.ID,
		PatchBytes:   len(gen.Patch.Diff),
		FilesTouched: len(gen.Patch.Files),
	}

	if s.input.Options.DryRun || !s.input.Options.Apply {
		s.addEvent(models.RunEvent{
			Kind:      models.EventPatchDryRun,
			PersonaID: p.ID,
			Detail:    gen.Patch.Diff,
		})
		return recordOutcome(ctx, s, outcome)
	}

	allowed, err := gatePatch(ctx, s, p, &gen.Patch)
	if err != nil {
		return err
	}
	if !allowed {
		return recordOutcome(ctx, s, outcome)
	}

	s.phase = models.PhaseApplying
	actCtx := defaultActivityOptions(ctx)

	branch := fmt.Sprintf("agent/%s/%s", p.ID, workflow.Now(ctx).UTC().Format(branchTimeFormat))
	if err := workflow.ExecuteActivity(actCtx, "PrepareBranch",
		activities.PrepareBranchInput{Dir: s.input.Cwd, Branch: branch}).Get(ctx, nil); err != nil {
		return fmt.Errorf("persona %s: create branch %s: %w", p.ID, branch, err)
	}
	s.addEvent(models.RunEvent{Kind: models.EventBranchCreated, PersonaID: p.ID, Message: branch})

	var applied activities.ApplyPatchOutput
	err = workflow.ExecuteActivity(actCtx, "ApplyPatch",
		activities.ApplyPatchInput{Dir: s.input.Cwd, Diff: gen.Patch.Diff}).Get(ctx, &applied)
	if err != nil {
		return fmt.Errorf("persona %s: apply patch: %w", p.ID, err)
	}
	if !applied.Applied {
		logger.Warn("Patch did not apply", "persona", p.ID, "branch", branch)
		s.addEvent(models.RunEvent{
			Kind:      models.EventApplyFailed,
			PersonaID: p.ID,
			Message:   "git rejected the patch",
			Detail:    applied.Reason,
		})
		if err := checkoutBase(ctx, s); err != nil {
			return err
		}
		return recordOutcome(ctx, s, outcome)
	}
	outcome.Applied = true
	outcome.Branch = branch
	s.lastAppliedBranch = branch

	message := fmt.Sprintf("%s: %s", p.ID, truncate(s.input.Task, 60))
	if err := workflow.ExecuteActivity(actCtx, "Commit",
		activities.CommitInput{Dir: s.input.Cwd, Message: message}).Get(ctx, nil); err != nil {
		return fmt.Errorf("persona %s: commit: %w", p.ID, err)
	}
	s.addEvent(models.RunEvent{Kind: models.EventCommitted, PersonaID: p.ID, Message: message})

	if s.input.Options.Push {
		var pushed activities.PushBranchOutput
		err := workflow.ExecuteActivity(actCtx, "PushBranch",
			activities.PushBranchInput{Dir: s.input.Cwd, Branch: branch}).Get(ctx, &pushed)
		if err != nil {
			return fmt.Errorf("persona %s: push: %w", p.ID, err)
		}
		if pushed.Pushed {
			outcome.Pushed = true
			s.lastPushedBranch = branch
			s.addEvent(models.RunEvent{Kind: models.EventPushed, PersonaID: p.ID, Message: branch})
		} else {
			logger.Warn("Push rejected", "persona", p.ID, "branch", branch)
			s.addEvent(models.RunEvent{
				Kind:      models.EventError,
				PersonaID: p.ID,
				Message:   "push rejected",
				Detail:    pushed.Reason,
			})
		}
	}

	if err := checkoutBase(ctx, s); err != nil {
		return err
	}
	return recordOutcome(ctx, s, outcome)
}

// gatePatch applies the policy verdict and, when required, waits for
// an approval signal. Returns whether the patch may be applied.
func gatePatch(ctx workflow.Context, s *runState, p models.Persona, patch *models.PatchInfo) (bool, error) {
	var check activities.CheckPatchPolicyOutput
	err := workflow.ExecuteActivity(defaultActivityOptions(ctx), "CheckPatchPolicy",
		activities.CheckPatchPolicyInput{Source: s.policySource, Files: patch.FileNames()}).Get(ctx, &check)
	if err != nil {
		return false, fmt.Errorf("persona %s: policy check: %w", p.ID, err)
	}

	switch check.Verdict {
	case policy.VerdictDeny:
		s.addEvent(models.RunEvent{
			Kind:      models.EventPolicyDenied,
			PersonaID: p.ID,
			Message:   "patch denied by policy",
			Detail:    check.Reason,
		})
		return false, nil

	case policy.VerdictAsk:
		if s.input.Options.ApprovalMode == models.ApprovalNever {
			return true, nil
		}
		return waitForApproval(ctx, s, p, patch, check.Reason)

	default:
		return true, nil
	}
}

// waitForApproval blocks until the CLI answers the approval signal or
// the run is cancelled. Cancellation counts as denial.
func waitForApproval(ctx workflow.Context, s *runState, p models.Persona, patch *models.PatchInfo, reason string) (bool, error) {
	logger := workflow.GetLogger(ctx)

	s.phase = models.PhaseApprovalPending
	s.pendingApproval = &PendingApproval{
		PersonaID: p.ID,
		Files:     patch.FileNames(),
		Reason:    reason,
	}
	s.approvalDecision = nil

	logger.Info("Waiting for patch approval", "persona", p.ID, "files", len(patch.Files))
	// Only a decision addressed to this persona counts; a stale signal
	// from an earlier prompt keeps the wait blocked.
	if err := workflow.Await(ctx, func() bool {
		return s.cancelled || (s.approvalDecision != nil && s.approvalDecision.PersonaID == p.ID)
	}); err != nil {
		return false, fmt.Errorf("persona %s: approval wait: %w", p.ID, err)
	}

	s.pendingApproval = nil
	if s.cancelled || !s.approvalDecision.Approved {
		s.addEvent(models.RunEvent{
			Kind:      models.EventApprovalDenied,
			PersonaID: p.ID,
			Message:   "patch not approved",
		})
		return false, nil
	}
	return true, nil
}

// checkoutBase returns the working tree to the base branch so the
// next persona starts from a clean state.
func checkoutBase(ctx workflow.Context, s *runState) error {
	err := workflow.ExecuteActivity(defaultActivityOptions(ctx), "Checkout",
		activities.CheckoutInput{Dir: s.input.Cwd, Branch: s.baseBranch()}).Get(ctx, nil)
	if err != nil {
		return fmt.Errorf("checkout %s: %w", s.baseBranch(), err)
	}
	return nil
}

// recordOutcome persists the persona summary. History failures are
// logged, not fatal; the run log already has the events.
func recordOutcome(ctx workflow.Context, s *runState, outcome models.PersonaOutcome) error {
	s.outcomes = append(s.outcomes, outcome)

	err := workflow.ExecuteActivity(defaultActivityOptions(ctx), "RecordPersonaRun", outcome).Get(ctx, nil)
	if err != nil {
		workflow.GetLogger(ctx).Warn("Failed to record run history", "persona", outcome.PersonaID, "error", err)
	}
	return nil
}

// runTests executes the test command on the last applied branch.
// Returns (passed, ran) where skipped runs count as passed.
func runTests(ctx workflow.Context, s *runState) (bool, bool, error) {
	opts := s.input.Options
	if opts.DryRun || !opts.Apply || s.lastAppliedBranch == "" {
		return true, false, nil
	}
	if opts.SkipTests {
		s.addEvent(models.RunEvent{Kind: models.EventTestsSkipped, Message: "skipped by run options"})
		return true, false, nil
	}

	s.phase = models.PhaseTesting

	// Test the branch that carries the final state of the run.
	if err := workflow.ExecuteActivity(defaultActivityOptions(ctx), "Checkout",
		activities.CheckoutInput{Dir: s.input.Cwd, Branch: s.lastAppliedBranch}).Get(ctx, nil); err != nil {
		return false, false, fmt.Errorf("checkout %s: %w", s.lastAppliedBranch, err)
	}

	var res activities.RunTestsOutput
	err := workflow.ExecuteActivity(testActivityOptions(ctx), "RunTests",
		activities.RunTestsInput{Dir: s.input.Cwd, Command: opts.TestCommand}).Get(ctx, &res)
	if err != nil {
		return false, false, fmt.Errorf("run tests: %w", err)
	}

	switch {
	case res.Skipped:
		s.addEvent(models.RunEvent{Kind: models.EventTestsSkipped, Message: "skipped by environment"})
	case res.Passed:
		s.addEvent(models.RunEvent{Kind: models.EventTestsPassed})
	default:
		s.addEvent(models.RunEvent{
			Kind:    models.EventTestsFailed,
			Message: fmt.Sprintf("exit code %d", res.ExitCode),
			Detail:  tail(res.Output, 4000),
		})
	}

	if err := checkoutBase(ctx, s); err != nil {
		return false, true, err
	}
	return res.Passed, !res.Skipped, nil
}

// openPullRequest opens at most one PR per run, for the last pushed
// branch, and only when tests did not fail.
func openPullRequest(ctx workflow.Context, s *runState, testsOK bool) error {
	opts := s.input.Options
	if !opts.PR {
		return nil
	}

	skip := func(reason string) {
		s.addEvent(models.RunEvent{Kind: models.EventPRSkipped, Message: reason})
	}
	switch {
	case !opts.Push:
		skip("pull request requires --push")
		return nil
	case s.lastPushedBranch == "":
		skip("no branch was pushed")
		return nil
	case !testsOK:
		skip("tests failed")
		return nil
	case s.repo.Owner == "" || s.repo.Repo == "":
		skip("origin remote is not a GitHub repository")
		return nil
	}

	personaIDs := make([]string, 0, len(s.outcomes))
	for _, o := range s.outcomes {
		if o.Applied {
			personaIDs = append(personaIDs, o.PersonaID)
		}
	}

	var pr activities.CreatePullRequestOutput
	err := workflow.ExecuteActivity(defaultActivityOptions(ctx), "CreatePullRequest",
		activities.CreatePullRequestInput{
			Owner: s.repo.Owner,
			Repo:  s.repo.Repo,
			Title: truncate(s.input.Task, 72),
			Head:  s.lastPushedBranch,
			Base:  s.baseBranch(),
			Body:  instructions.BuildPRBody(s.input.Task, personaIDs),
		}).Get(ctx, &pr)
	if err != nil {
		return fmt.Errorf("create pull request: %w", err)
	}

	if !pr.Created {
		skip(pr.Reason)
		return nil
	}
	s.prURL = pr.URL
	s.addEvent(models.RunEvent{
		Kind:    models.EventPRCreated,
		Message: fmt.Sprintf("#%d %s", pr.Number, pr.URL),
	})

	// Complete the history row of the persona whose branch the PR is
	// for; the row was recorded before the PR existed.
	for i := range s.outcomes {
		if s.outcomes[i].Branch != s.lastPushedBranch {
			continue
		}
		s.outcomes[i].PRURL = pr.URL
		err := workflow.ExecuteActivity(defaultActivityOptions(ctx), "UpdatePersonaRunPR",
			activities.UpdatePersonaRunPRInput{
				RunID:     s.outcomes[i].RunID,
				PersonaID: s.outcomes[i].PersonaID,
				PRURL:     pr.URL,
			}).Get(ctx, nil)
		if err != nil {
			workflow.GetLogger(ctx).Warn("Failed to record pull request in run history",
				"persona", s.outcomes[i].PersonaID, "error", err)
		}
		break
	}
	return nil
}

// truncate returns s cut to n bytes with "..." appended if it was longer.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// tail returns the last n bytes of s.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
