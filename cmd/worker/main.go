// worker hosts the run workflow and its activities: LLM calls, git
// operations, the test runner, pull-request creation, and run
// history.
//
// Temporal connection settings come from the standard TEMPORAL_*
// environment variables. Provider credentials come from LLM_API_KEY /
// ANTHROPIC_API_KEY / OPENAI_API_KEY, pull requests from
// GITHUB_TOKEN.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/contrib/envconfig"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/mfateev/autodev-temporal-go/internal/activities"
	"github.com/mfateev/autodev-temporal-go/internal/cli"
	"github.com/mfateev/autodev-temporal-go/internal/history"
	"github.com/mfateev/autodev-temporal-go/internal/hosting"
	"github.com/mfateev/autodev-temporal-go/internal/llm"
	"github.com/mfateev/autodev-temporal-go/internal/logging"
	"github.com/mfateev/autodev-temporal-go/internal/workflow"
)

func main() {
	temporalHost := flag.String("temporal-host", "", "Temporal server address override")
	historyDB := flag.String("history-db", defaultHistoryPath(), "Run history database")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if err := run(*temporalHost, *historyDB, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(temporalHost, historyDB string, debug bool) error {
	logConfig := zap.NewProductionConfig()
	if debug {
		logConfig = zap.NewDevelopmentConfig()
	}
	logger, err := logConfig.Build()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	clientOptions, err := envconfig.LoadDefaultClientOptions()
	if err != nil {
		return fmt.Errorf("load Temporal config: %w", err)
	}
	if temporalHost != "" {
		clientOptions.HostPort = temporalHost
	}
	clientOptions.Logger = logging.NewTemporalLogger(logger)

	c, err := client.Dial(clientOptions)
	if err != nil {
		return fmt.Errorf("connect to Temporal: %w", err)
	}
	defer c.Close()

	store, err := history.Open(historyDB)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	w := worker.New(c, cli.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflow.AutoDevWorkflow)
	w.RegisterActivity(activities.NewPersonaActivities())
	w.RegisterActivity(activities.NewLLMActivities(llm.NewMultiProviderClient()))
	w.RegisterActivity(activities.NewGitActivities())
	w.RegisterActivity(activities.NewPolicyActivities())
	w.RegisterActivity(activities.NewTestActivities())
	w.RegisterActivity(activities.NewHostingActivities(hosting.NewGitHubClient()))
	w.RegisterActivity(activities.NewHistoryActivities(store))

	logger.Info("Worker starting",
		zap.String("task_queue", cli.TaskQueue),
		zap.String("history_db", historyDB))

	if err := w.Run(worker.InterruptCh()); err != nil {
		return fmt.Errorf("worker stopped: %w", err)
	}
	return nil
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".autodev/history.db"
	}
	return filepath.Join(home, ".autodev", "history.db")
}
