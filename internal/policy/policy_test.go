package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_EmptySourceAllowsEverything(t *testing.T) {
	p, err := Compile("")
	require.NoError(t, err)

	v, err := p.Check([]string{"main.go", ".github/workflows/ci.yml"})
	require.NoError(t, err)
	assert.Equal(t, VerdictAllow, v)
}

func TestCheck_BoolVerdicts(t *testing.T) {
	p, err := Compile(`
def allow_patch(files):
    for f in files:
        if f.startswith("vendor/"):
            return False
    return True
`)
	require.NoError(t, err)

	v, err := p.Check([]string{"internal/x.go"})
	require.NoError(t, err)
	assert.Equal(t, VerdictAllow, v)

	v, err = p.Check([]string{"internal/x.go", "vendor/dep/y.go"})
	require.NoError(t, err)
	assert.Equal(t, VerdictDeny, v)
}

func TestCheck_StringVerdicts(t *testing.T) {
	p, err := Compile(`
def allow_patch(files):
    for f in files:
        if f.startswith(".github/"):
            return "deny"
        if f == "go.mod":
            return "ask"
    return "allow"
`)
	require.NoError(t, err)

	cases := []struct {
		files []string
		want  Verdict
	}{
		{[]string{"main.go"}, VerdictAllow},
		{[]string{"go.mod"}, VerdictAsk},
		{[]string{".github/workflows/ci.yml"}, VerdictDeny},
	}
	for _, c := range cases {
		v, err := p.Check(c.files)
		require.NoError(t, err)
		assert.Equal(t, c.want, v, c.files)
	}
}

func TestCheck_UnknownStringVerdict(t *testing.T) {
	p, err := Compile(`
def allow_patch(files):
    return "maybe"
`)
	require.NoError(t, err)

	v, err := p.Check([]string{"x"})
	assert.Error(t, err)
	assert.Equal(t, VerdictDeny, v)
}

func TestCheck_WrongReturnType(t *testing.T) {
	p, err := Compile(`
def allow_patch(files):
    return 42
`)
	require.NoError(t, err)

	v, err := p.Check(nil)
	assert.Error(t, err)
	assert.Equal(t, VerdictDeny, v)
}

func TestCheck_PolicyRaises(t *testing.T) {
	p, err := Compile(`
def allow_patch(files):
    fail("no patches today")
`)
	require.NoError(t, err)

	v, err := p.Check([]string{"x"})
	require.Error(t, err)
	assert.Equal(t, VerdictDeny, v)
	assert.Contains(t, err.Error(), "no patches today")
}

func TestCompile_MissingEntryPoint(t *testing.T) {
	_, err := Compile(`x = 1`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allow_patch")
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := Compile(`def allow_patch(files`)
	assert.Error(t, err)
}

func TestLoadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.star")
	require.NoError(t, os.WriteFile(path, []byte("def allow_patch(files):\n    return True\n"), 0o644))

	src, err := LoadSource(path)
	require.NoError(t, err)
	assert.Contains(t, src, "allow_patch")
}

func TestLoadSource_MissingFileIsEmpty(t *testing.T) {
	src, err := LoadSource(filepath.Join(t.TempDir(), "nope.star"))
	require.NoError(t, err)
	assert.Empty(t, src)
}
