// autodev starts a persona-driven patch run and follows it from the
// terminal.
//
// Usage:
//
//	autodev -task "add retry to the fetcher"                 Dry-run preview
//	autodev -task "..." --apply --push --pr                  Full pipeline
//	autodev -task "..." --provider anthropic --full-auto     No approval prompts
//	autodev --run <id>                                       Reattach to a run
//	autodev --history 20                                     Show recent outcomes
//
// Temporal connection settings come from the standard TEMPORAL_*
// environment variables; --temporal-host overrides the address.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.temporal.io/sdk/contrib/envconfig"

	"github.com/mfateev/autodev-temporal-go/internal/cli"
	"github.com/mfateev/autodev-temporal-go/internal/history"
	"github.com/mfateev/autodev-temporal-go/internal/llm"
	"github.com/mfateev/autodev-temporal-go/internal/models"
)

func main() {
	task := flag.String("task", "", "Task description for the personas")
	runID := flag.String("run", "", "Reattach to an existing run")
	personasPath := flag.String("personas", "", "Personas file (YAML); built-in set when empty")
	provider := flag.String("provider", "", "LLM provider: openai, anthropic, cli, mock")
	model := flag.String("model", "", "Model name (provider default when empty)")
	baseURL := flag.String("base-url", "", "OpenAI-compatible endpoint override")
	cliCommand := flag.String("cli-command", "", "Command for the cli provider")
	apply := flag.Bool("apply", false, "Apply patches on fresh branches")
	push := flag.Bool("push", false, "Push applied branches to origin")
	pr := flag.Bool("pr", false, "Open a pull request for the last pushed branch")
	dryRun := flag.Bool("dry-run", false, "Generate and show patches without touching git")
	skipTests := flag.Bool("skip-tests", false, "Skip the test command")
	testCommand := flag.String("test-command", "", "Test command (default: go test ./...)")
	baseBranch := flag.String("base-branch", "", "Base branch (default: current branch)")
	fullAuto := flag.Bool("full-auto", false, "Approve all policy-flagged patches without prompting")
	historyN := flag.Int("history", 0, "Print the last N persona outcomes and exit")
	historyDB := flag.String("history-db", defaultHistoryPath(), "Run history database")
	temporalHost := flag.String("temporal-host", "", "Temporal server address override")
	noMarkdown := flag.Bool("no-markdown", false, "Disable markdown rendering")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	flag.Parse()

	if *historyN > 0 {
		if err := printHistory(*historyDB, *historyN); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	clientOptions, err := envconfig.LoadDefaultClientOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading Temporal config: %v\n", err)
		os.Exit(1)
	}
	if *temporalHost != "" {
		clientOptions.HostPort = *temporalHost
	}

	providerConfig := llm.ConfigFromEnv()
	if *provider != "" {
		providerConfig.Provider = *provider
	}
	if *model != "" {
		providerConfig.Model = *model
	}
	if *baseURL != "" {
		providerConfig.BaseURL = *baseURL
	}
	if *cliCommand != "" {
		providerConfig.CLICommand = *cliCommand
	}

	approvalMode := models.ApprovalUnlessAllowed
	if *fullAuto {
		approvalMode = models.ApprovalNever
	}

	cwd, _ := os.Getwd()

	app := cli.NewApp(cli.Config{
		ClientOptions: clientOptions,
		WorkflowID:    *runID,
		Task:          *task,
		PersonasPath:  *personasPath,
		Cwd:           cwd,
		Provider:      providerConfig,
		Options: models.RunOptions{
			Apply:        *apply || *push || *pr,
			Push:         *push || *pr,
			PR:           *pr,
			DryRun:       *dryRun,
			SkipTests:    *skipTests,
			TestCommand:  *testCommand,
			BaseBranch:   *baseBranch,
			ApprovalMode: approvalMode,
		},
		FullAuto:   *fullAuto,
		NoMarkdown: *noMarkdown,
		NoColor:    *noColor,
	})
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".autodev/history.db"
	}
	return filepath.Join(home, ".autodev", "history.db")
}

func printHistory(path string, n int) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(context.Background(), n)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	for _, rec := range records {
		status := "generated"
		switch {
		case rec.PRURL != "":
			status = "pr " + rec.PRURL
		case rec.Pushed:
			status = "pushed " + rec.Branch
		case rec.Applied:
			status = "applied " + rec.Branch
		}
		fmt.Printf("%s  %-12s %-12s %3d files  %s\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			rec.RunID, rec.PersonaID, rec.FilesTouched, status)
	}
	return nil
}
