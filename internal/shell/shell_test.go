package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecArgs_Login(t *testing.T) {
	s := &Shell{Type: TypeBash, Path: "/bin/bash"}
	assert.Equal(t, []string{"/bin/bash", "-lc", "echo hi"}, s.ExecArgs("echo hi", true))
}

func TestExecArgs_NonLogin(t *testing.T) {
	s := &Shell{Type: TypeZsh, Path: "/usr/bin/zsh"}
	assert.Equal(t, []string{"/usr/bin/zsh", "-c", "ls"}, s.ExecArgs("ls", false))
}

func TestDetectType(t *testing.T) {
	cases := []struct {
		path string
		want Type
		ok   bool
	}{
		{"/bin/bash", TypeBash, true},
		{"/usr/local/bin/zsh", TypeZsh, true},
		{"sh", TypeSh, true},
		{"/usr/bin/fish", 0, false},
	}
	for _, c := range cases {
		got, ok := detectType(c.path)
		assert.Equal(t, c.ok, ok, c.path)
		if ok {
			assert.Equal(t, c.want, got, c.path)
		}
	}
}

func TestDetect_FromEnv(t *testing.T) {
	t.Setenv("SHELL", "/bin/bash")
	s := Detect()
	require.NotNil(t, s)
	assert.Equal(t, TypeBash, s.Type)
	assert.Equal(t, "/bin/bash", s.Path)
}

func TestDetect_UnrecognisedFallsBack(t *testing.T) {
	t.Setenv("SHELL", "/usr/bin/fish")
	s := Detect()
	require.NotNil(t, s)
	// Fallback is bash or sh depending on the machine, never fish.
	assert.NotEqual(t, "/usr/bin/fish", s.Path)
}

func TestName(t *testing.T) {
	assert.Equal(t, "bash", (&Shell{Type: TypeBash}).Name())
	assert.Equal(t, "zsh", (&Shell{Type: TypeZsh}).Name())
	assert.Equal(t, "sh", (&Shell{Type: TypeSh}).Name())
}
