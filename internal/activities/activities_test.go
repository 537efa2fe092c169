package activities

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfateev/autodev-temporal-go/internal/llm"
	"github.com/mfateev/autodev-temporal-go/internal/models"
	"github.com/mfateev/autodev-temporal-go/internal/policy"
)

func TestLoadPersonas_Defaults(t *testing.T) {
	a := NewPersonaActivities()

	out, err := a.LoadPersonas(context.Background(), LoadPersonasInput{})
	require.NoError(t, err)
	require.NotEmpty(t, out.Personas)
	assert.Equal(t, "architect", out.Personas[0].ID)
}

func TestGeneratePatch_MockProvider(t *testing.T) {
	a := NewLLMActivities(&llm.MockClient{})

	out, err := a.GeneratePatch(context.Background(), GeneratePatchInput{
		Prompt:   "add a greeting",
		Provider: models.ProviderConfig{Provider: "mock"},
	})
	require.NoError(t, err)
	assert.True(t, out.Found)
	assert.NotEmpty(t, out.Patch.Diff)
	assert.Greater(t, out.RawBytes, 0)
}

func TestGeneratePatch_NoMarkers(t *testing.T) {
	a := NewLLMActivities(&llm.MockClient{Content: "I could not produce a patch."})

	out, err := a.GeneratePatch(context.Background(), GeneratePatchInput{
		Provider: models.ProviderConfig{Provider: "mock"},
	})
	require.NoError(t, err)
	assert.False(t, out.Found)
	assert.Empty(t, out.Patch.Diff)
}

func TestCheckPatchPolicy_EmptySourceAllows(t *testing.T) {
	a := NewPolicyActivities()

	out, err := a.CheckPatchPolicy(context.Background(), CheckPatchPolicyInput{
		Files: []string{"main.go"},
	})
	require.NoError(t, err)
	assert.Equal(t, policy.VerdictAllow, out.Verdict)
}

func TestCheckPatchPolicy_DeniesProtectedFile(t *testing.T) {
	a := NewPolicyActivities()
	source := `
def allow_patch(files):
    for f in files:
        if f.startswith("secrets/"):
            return "deny"
    return "allow"
`

	out, err := a.CheckPatchPolicy(context.Background(), CheckPatchPolicyInput{
		Source: source,
		Files:  []string{"secrets/key.pem"},
	})
	require.NoError(t, err)
	assert.Equal(t, policy.VerdictDeny, out.Verdict)

	out, err = a.CheckPatchPolicy(context.Background(), CheckPatchPolicyInput{
		Source: source,
		Files:  []string{"main.go"},
	})
	require.NoError(t, err)
	assert.Equal(t, policy.VerdictAllow, out.Verdict)
}

func TestCheckPatchPolicy_EvaluationErrorDenies(t *testing.T) {
	a := NewPolicyActivities()

	out, err := a.CheckPatchPolicy(context.Background(), CheckPatchPolicyInput{
		Source: "def allow_patch(files):\n    return undefined_name\n",
		Files:  []string{"main.go"},
	})
	require.NoError(t, err)
	assert.Equal(t, policy.VerdictDeny, out.Verdict)
	assert.NotEmpty(t, out.Reason)
}

func TestLoadPolicy_MissingFileAllowsEverything(t *testing.T) {
	a := NewPolicyActivities()

	out, err := a.LoadPolicy(context.Background(), LoadPolicyInput{Path: "/nonexistent/policy.star"})
	require.NoError(t, err)
	assert.Empty(t, out.Source)
}

func TestLoadPolicy_MissingEntryPointFails(t *testing.T) {
	a := NewPolicyActivities()
	path := filepath.Join(t.TempDir(), "policy.star")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))

	_, err := a.LoadPolicy(context.Background(), LoadPolicyInput{Path: path})
	require.Error(t, err)
}

func TestRunTests_CommandResult(t *testing.T) {
	a := NewTestActivities()
	dir := t.TempDir()

	out, err := a.RunTests(context.Background(), RunTestsInput{Dir: dir, Command: "true"})
	require.NoError(t, err)
	assert.True(t, out.Passed)

	out, err = a.RunTests(context.Background(), RunTestsInput{Dir: dir, Command: "false"})
	require.NoError(t, err)
	assert.False(t, out.Passed)
	assert.NotZero(t, out.ExitCode)
}

func TestRunTests_SkipRequested(t *testing.T) {
	t.Setenv("SKIP_TESTS", "1")
	a := NewTestActivities()

	out, err := a.RunTests(context.Background(), RunTestsInput{Dir: t.TempDir(), Command: "false"})
	require.NoError(t, err)
	assert.True(t, out.Passed)
	assert.True(t, out.Skipped)
}

func TestRecordPersonaRun_NilStore(t *testing.T) {
	a := NewHistoryActivities(nil)
	require.NoError(t, a.RecordPersonaRun(context.Background(), models.PersonaOutcome{
		RunID: "r", PersonaID: "p",
	}))
	require.NoError(t, a.UpdatePersonaRunPR(context.Background(), UpdatePersonaRunPRInput{
		RunID: "r", PersonaID: "p", PRURL: "https://example.com/pull/1",
	}))
}
