package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mfateev/autodev-temporal-go/internal/models"
	"github.com/mfateev/autodev-temporal-go/internal/workflow"
)

func newTestRenderer(buf *bytes.Buffer) *Renderer {
	return NewRenderer(buf, true, true) // noColor, noMarkdown for stable output
}

func TestRenderer_PersonaStarted(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf)

	rendered := r.RenderEvent(models.RunEvent{
		Kind: models.EventPersonaStarted, PersonaID: "tester", Message: "Tester",
	})

	assert.True(t, rendered)
	assert.Contains(t, buf.String(), "Tester")
	assert.Contains(t, buf.String(), "tester")
}

func TestRenderer_PatchGeneratedShowsFileStats(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf)

	r.RenderEvent(models.RunEvent{
		Kind:      models.EventPatchGenerated,
		PersonaID: "implementer",
		Message:   "1 files, 120 bytes",
		Patch: &models.PatchInfo{
			Diff:  "diff --git a/main.go b/main.go\n",
			Files: []models.FileStat{{Path: "main.go", Added: 3, Deleted: 1}},
		},
	})

	assert.Contains(t, buf.String(), "main.go")
	assert.Contains(t, buf.String(), "+3")
	assert.Contains(t, buf.String(), "-1")
}

func TestRenderer_DryRunShowsDiff(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf)

	r.RenderEvent(models.RunEvent{
		Kind:   models.EventPatchDryRun,
		Detail: "diff --git a/hello.txt b/hello.txt\n+hello\n",
	})

	assert.Contains(t, buf.String(), "dry run")
	assert.Contains(t, buf.String(), "+hello")
}

func TestRenderer_TestsFailedTruncatesDetail(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf)

	detail := strings.Repeat("FAIL line\n", 50)
	r.RenderEvent(models.RunEvent{
		Kind:    models.EventTestsFailed,
		Message: "exit code 1",
		Detail:  detail,
	})

	assert.Contains(t, buf.String(), "tests failed")
	assert.Contains(t, buf.String(), "more lines")
	assert.Less(t, strings.Count(buf.String(), "FAIL line"), 50)
}

func TestRenderer_NoColorHasNoANSI(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf)

	r.RenderEvent(models.RunEvent{Kind: models.EventTestsPassed})
	r.RenderEvent(models.RunEvent{Kind: models.EventPRCreated, Message: "#1 https://example.com"})

	assert.NotContains(t, buf.String(), "\033[")
}

func TestRenderer_ApprovalPrompt(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf)

	r.RenderApprovalPrompt(workflow.PendingApproval{
		PersonaID: "reviewer",
		Files:     []string{"internal/app.go", "go.mod"},
		Reason:    "touches go.mod",
	})

	out := buf.String()
	assert.Contains(t, out, "reviewer")
	assert.Contains(t, out, "internal/app.go")
	assert.Contains(t, out, "touches go.mod")
	assert.Contains(t, out, "[y]es")
}

func TestRenderer_Summary(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf)

	r.RenderSummary(workflow.RunResult{
		Outcomes: []models.PersonaOutcome{
			{PersonaID: "architect", Applied: true},
			{PersonaID: "tester"},
		},
		TestsPassed: true,
		TestsRan:    true,
		PRURL:       "https://github.com/acme/widgets/pull/7",
	})

	out := buf.String()
	assert.Contains(t, out, "2 persona(s)")
	assert.Contains(t, out, "1 patch(es)")
	assert.Contains(t, out, "tests passed")
	assert.Contains(t, out, "pull/7")
}

func TestPhaseMessage(t *testing.T) {
	assert.Equal(t, "Generating patch... (tester)", PhaseMessage(models.PhaseGenerating, "tester"))
	assert.Equal(t, "Running tests...", PhaseMessage(models.PhaseTesting, ""))
	assert.Equal(t, "Working...", PhaseMessage(models.PhaseStarting, ""))
	assert.Equal(t, "Waiting for approval... (reviewer)", PhaseMessage(models.PhaseApprovalPending, "reviewer"))
}
