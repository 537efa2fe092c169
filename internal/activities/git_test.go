package activities

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, args := range [][]string{
		{"init", "-b", "main"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "Test"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# demo\n"), 0o644))
	cmd := exec.Command("git", "add", "-A")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())
	cmd = exec.Command("git", "commit", "-m", "init")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	return dir
}

const readmePatch = `diff --git a/README.md b/README.md
index 2ff3a6c..8b0e9b1 100644
--- a/README.md
+++ b/README.md
@@ -1 +1,2 @@
 # demo
+Updated by a run.
`

func TestRepoInfo(t *testing.T) {
	a := NewGitActivities()
	dir := initRepo(t)

	out, err := a.RepoInfo(context.Background(), RepoInfoInput{Dir: dir})
	require.NoError(t, err)
	assert.True(t, out.IsRepo)
	assert.Equal(t, "main", out.CurrentBranch)
	assert.Empty(t, out.Owner)
}

func TestRepoInfo_NotARepo(t *testing.T) {
	a := NewGitActivities()

	out, err := a.RepoInfo(context.Background(), RepoInfoInput{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.False(t, out.IsRepo)
}

func TestBranchApplyCommit(t *testing.T) {
	a := NewGitActivities()
	dir := initRepo(t)
	ctx := context.Background()

	require.NoError(t, a.PrepareBranch(ctx, PrepareBranchInput{Dir: dir, Branch: "agent/tester/1"}))

	applied, err := a.ApplyPatch(ctx, ApplyPatchInput{Dir: dir, Diff: readmePatch})
	require.NoError(t, err)
	assert.True(t, applied.Applied)

	require.NoError(t, a.Commit(ctx, CommitInput{Dir: dir, Message: "tester: update readme"}))

	info, err := a.RepoInfo(ctx, RepoInfoInput{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, "agent/tester/1", info.CurrentBranch)

	require.NoError(t, a.Checkout(ctx, CheckoutInput{Dir: dir, Branch: "main"}))
	data, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# demo\n", string(data))
}

func TestApplyPatch_BadPatchIsOutcome(t *testing.T) {
	a := NewGitActivities()
	dir := initRepo(t)

	out, err := a.ApplyPatch(context.Background(), ApplyPatchInput{
		Dir:  dir,
		Diff: "this is not a diff",
	})
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.NotEmpty(t, out.Reason)
}

func TestPushBranch_NoRemoteIsOutcome(t *testing.T) {
	a := NewGitActivities()
	dir := initRepo(t)

	out, err := a.PushBranch(context.Background(), PushBranchInput{Dir: dir, Branch: "main"})
	require.NoError(t, err)
	assert.False(t, out.Pushed)
	assert.NotEmpty(t, out.Reason)
}
