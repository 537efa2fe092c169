// Package cli implements the interactive run client: it starts or
// resumes a run workflow, streams its event log to the terminal, and
// answers approval prompts.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/mfateev/autodev-temporal-go/internal/models"
	"github.com/mfateev/autodev-temporal-go/internal/workflow"
)

const (
	TaskQueue    = "autodev"
	PollInterval = 200 * time.Millisecond
)

// Config holds CLI configuration.
type Config struct {
	ClientOptions client.Options
	WorkflowID    string // resume an existing run
	Task          string
	PersonasPath  string
	Cwd           string
	Provider      models.ProviderConfig
	Options       models.RunOptions
	FullAuto      bool
	NoMarkdown    bool
	NoColor       bool
}

// App drives one run from the terminal.
type App struct {
	config   Config
	client   client.Client
	renderer *Renderer
	spinner  *Spinner
	poller   *Poller

	workflowID  string
	lastSeq     int
	autoApprove bool

	// persona whose pending approval was already answered, so one
	// decision is signalled per prompt.
	answeredPersona string

	pollCh chan PollResult
	sigCh  chan os.Signal
}

// NewApp creates a new CLI app.
func NewApp(config Config) *App {
	return &App{
		config:      config,
		autoApprove: config.FullAuto,
		pollCh:      make(chan PollResult, 1),
		sigCh:       make(chan os.Signal, 1),
	}
}

// Run is the main entry point.
func (a *App) Run() error {
	c, err := client.Dial(a.config.ClientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to Temporal: %w", err)
	}
	defer c.Close()
	a.client = c

	a.renderer = NewRenderer(os.Stdout, a.config.NoColor, a.config.NoMarkdown)
	a.spinner = NewSpinner(os.Stderr)

	signal.Notify(a.sigCh, syscall.SIGINT)
	defer signal.Stop(a.sigCh)

	if a.config.WorkflowID != "" {
		a.workflowID = a.config.WorkflowID
		fmt.Fprintf(os.Stderr, "Resuming run: %s\n", a.workflowID)
	} else {
		if err := a.startWorkflow(); err != nil {
			return err
		}
	}

	return a.mainLoop()
}

func (a *App) startWorkflow() error {
	if strings.TrimSpace(a.config.Task) == "" {
		return fmt.Errorf("no task given (use -task)")
	}

	a.workflowID = fmt.Sprintf("autodev-%s", uuid.New().String()[:8])

	cwd := a.config.Cwd
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	input := models.RunInput{
		Task:         a.config.Task,
		PersonasPath: a.config.PersonasPath,
		Cwd:          cwd,
		Provider:     a.config.Provider,
		Options:      a.config.Options,
	}

	_, err := a.client.ExecuteWorkflow(context.Background(), client.StartWorkflowOptions{
		ID:        a.workflowID,
		TaskQueue: TaskQueue,
	}, "AutoDevWorkflow", input)
	if err != nil {
		return fmt.Errorf("failed to start workflow: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Run: %s\n", a.workflowID)
	return nil
}

func (a *App) mainLoop() error {
	a.poller = NewPoller(a.client, a.workflowID, PollInterval)

	pollCtx, cancelPolling := context.WithCancel(context.Background())
	defer cancelPolling()
	go a.poller.RunPolling(pollCtx, a.pollCh)

	a.spinner.Start("Starting...")
	cancelSent := false

	for {
		select {
		case result := <-a.pollCh:
			if result.Err != nil {
				a.spinner.Stop()
				return fmt.Errorf("poll failed: %w", result.Err)
			}
			if result.Completed {
				a.spinner.Stop()
				return a.finish()
			}

			a.renderNewEvents(result.Events)
			a.spinner.SetMessage(PhaseMessage(result.Status.Phase, result.Status.PersonaID))

			if result.Status.Phase == models.PhaseComplete || result.Status.Phase == models.PhaseFailed {
				a.spinner.Stop()
				return a.finish()
			}

			if p := result.Status.PendingApproval; p != nil && p.PersonaID != a.answeredPersona {
				if err := a.answerApproval(*p); err != nil {
					fmt.Fprintf(os.Stderr, "Error sending approval: %v\n", err)
				}
			}

		case <-a.sigCh:
			if cancelSent {
				a.spinner.Stop()
				fmt.Fprintf(os.Stderr, "\nExiting; run %s keeps going on the worker.\n", a.workflowID)
				return nil
			}
			cancelSent = true
			a.spinner.SetMessage("Cancelling...")
			fmt.Fprintf(os.Stderr, "\nCancelling run... (press Ctrl+C again to detach)\n")
			if err := a.client.SignalWorkflow(context.Background(), a.workflowID, "",
				workflow.SignalCancel, nil); err != nil {
				fmt.Fprintf(os.Stderr, "Error sending cancel: %v\n", err)
			}
		}
	}
}

// answerApproval prompts for (or auto-decides) a pending approval and
// signals the decision.
func (a *App) answerApproval(p workflow.PendingApproval) error {
	a.answeredPersona = p.PersonaID

	approved := true
	if !a.autoApprove {
		a.spinner.Stop()
		a.renderer.RenderApprovalPrompt(p)

		choice := a.promptChoice()
		switch choice {
		case ChoiceAlways:
			a.autoApprove = true
		case ChoiceDeny:
			approved = false
		}
		a.spinner.Start("Working...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.client.SignalWorkflow(ctx, a.workflowID, "", workflow.SignalApproval,
		workflow.ApprovalDecision{PersonaID: p.PersonaID, Approved: approved})
}

// promptChoice reads lines until one parses. EOF or interrupt counts
// as denial.
func (a *App) promptChoice() ApprovalChoice {
	rl, err := readline.New("")
	if err != nil {
		return ChoiceDeny
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			return ChoiceDeny
		}
		if choice := ParseApprovalInput(line); choice != ChoiceUnknown {
			return choice
		}
		fmt.Fprint(os.Stderr, "Please answer y, n, or a: ")
	}
}

func (a *App) renderNewEvents(events []models.RunEvent) {
	rendered := false
	for _, ev := range events {
		if ev.Seq <= a.lastSeq {
			continue
		}
		if !rendered {
			a.spinner.Stop()
			rendered = true
		}
		a.renderer.RenderEvent(ev)
		a.lastSeq = ev.Seq
	}
	if rendered {
		a.spinner.Start("Working...")
	}
}

// finish waits for the workflow result and prints the summary.
func (a *App) finish() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	run := a.client.GetWorkflow(ctx, a.workflowID, "")
	var result workflow.RunResult
	if err := run.Get(ctx, &result); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	a.renderer.RenderSummary(result)
	return nil
}

// PhaseMessage maps a run phase to a spinner message.
func PhaseMessage(phase models.RunPhase, personaID string) string {
	suffix := ""
	if personaID != "" {
		suffix = " (" + personaID + ")"
	}
	switch phase {
	case models.PhaseGenerating:
		return "Generating patch..." + suffix
	case models.PhaseApplying:
		return "Applying patch..." + suffix
	case models.PhaseApprovalPending:
		return "Waiting for approval..." + suffix
	case models.PhaseTesting:
		return "Running tests..."
	default:
		return "Working..."
	}
}
