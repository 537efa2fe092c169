// Package models holds the serializable types shared between the CLI,
// the workflow, and the activity layer. Everything here crosses a
// Temporal data-converter boundary, so fields are plain JSON-taggable
// values with no behaviour beyond small helpers.
package models

// ApprovalMode controls whether patch application waits for the user.
type ApprovalMode string

const (
	// ApprovalNever applies patches without asking (full-auto).
	ApprovalNever ApprovalMode = "never"
	// ApprovalUnlessAllowed asks before applying any patch the policy
	// did not explicitly allow.
	ApprovalUnlessAllowed ApprovalMode = "unless-allowed"
)

// Persona is a named role template used to vary prompt phrasing.
type Persona struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	RolePrompt string `json:"role_prompt" yaml:"role_prompt"`
}

// ProviderConfig selects and configures the language-model backend.
type ProviderConfig struct {
	// Provider is one of "openai", "anthropic", "cli", "mock".
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	// BaseURL overrides the OpenAI endpoint (OpenAI-compatible servers).
	BaseURL string `json:"base_url,omitempty"`
	// CLICommand is the shell command for the "cli" provider. It reads
	// the prompt on stdin and writes the response to stdout.
	CLICommand string `json:"cli_command,omitempty"`
}

// RunOptions are the per-run switches mirroring the CLI flags.
type RunOptions struct {
	Apply        bool         `json:"apply"`
	Push         bool         `json:"push"`
	PR           bool         `json:"pr"`
	DryRun       bool         `json:"dry_run"`
	SkipTests    bool         `json:"skip_tests"`
	TestCommand  string       `json:"test_command,omitempty"`
	BaseBranch   string       `json:"base_branch,omitempty"`
	ApprovalMode ApprovalMode `json:"approval_mode,omitempty"`
}

// RunInput starts an AutoDevWorkflow execution.
type RunInput struct {
	Task         string         `json:"task"`
	Personas     []Persona      `json:"personas,omitempty"`
	PersonasPath string         `json:"personas_path,omitempty"`
	Cwd          string         `json:"cwd"`
	Provider     ProviderConfig `json:"provider"`
	Options      RunOptions     `json:"options"`
}

// RunPhase is the coarse state exposed through the status query.
type RunPhase string

const (
	PhaseStarting        RunPhase = "starting"
	PhaseGenerating      RunPhase = "generating"
	PhaseApplying        RunPhase = "applying"
	PhaseApprovalPending RunPhase = "approval_pending"
	PhaseTesting         RunPhase = "testing"
	PhaseComplete        RunPhase = "complete"
	PhaseFailed          RunPhase = "failed"
)

// EventKind discriminates RunEvent payloads.
type EventKind string

const (
	EventPersonaStarted EventKind = "persona_started"
	EventPatchGenerated EventKind = "patch_generated"
	EventPatchMissing   EventKind = "patch_missing"
	EventPatchDryRun    EventKind = "patch_dry_run"
	EventPolicyDenied   EventKind = "policy_denied"
	EventApprovalDenied EventKind = "approval_denied"
	EventBranchCreated  EventKind = "branch_created"
	EventApplyFailed    EventKind = "apply_failed"
	EventCommitted      EventKind = "committed"
	EventPushed         EventKind = "pushed"
	EventTestsPassed    EventKind = "tests_passed"
	EventTestsFailed    EventKind = "tests_failed"
	EventTestsSkipped   EventKind = "tests_skipped"
	EventPRCreated      EventKind = "pr_created"
	EventPRSkipped      EventKind = "pr_skipped"
	EventError          EventKind = "error"
)

// RunEvent is one entry in the ordered run log. Seq is assigned by the
// workflow and strictly increases, letting the CLI render incrementally.
type RunEvent struct {
	Seq       int       `json:"seq"`
	Kind      EventKind `json:"kind"`
	PersonaID string    `json:"persona_id,omitempty"`
	Message   string    `json:"message,omitempty"`
	// Detail carries bulky free text: the patch in dry-run events, test
	// output tails, error output from git.
	Detail string     `json:"detail,omitempty"`
	Patch  *PatchInfo `json:"patch,omitempty"`
}

// FileStat summarizes changes to a single file in a patch.
type FileStat struct {
	Path    string `json:"path"`
	Added   int    `json:"added"`
	Deleted int    `json:"deleted"`
}

// PatchInfo is an extracted unified diff plus best-effort stats.
// Stats may be empty when the diff did not parse; git apply remains
// the authority on whether the patch is usable.
type PatchInfo struct {
	Diff  string     `json:"diff"`
	Files []FileStat `json:"files,omitempty"`
}

// FileNames returns the paths touched by the patch.
func (p *PatchInfo) FileNames() []string {
	names := make([]string, len(p.Files))
	for i, f := range p.Files {
		names[i] = f.Path
	}
	return names
}

// PersonaOutcome is the per-persona summary recorded in run history.
type PersonaOutcome struct {
	RunID        string `json:"run_id"`
	PersonaID    string `json:"persona_id"`
	Branch       string `json:"branch,omitempty"`
	PatchBytes   int    `json:"patch_bytes"`
	FilesTouched int    `json:"files_touched"`
	Applied      bool   `json:"applied"`
	Pushed       bool   `json:"pushed"`
	PRURL        string `json:"pr_url,omitempty"`
}
