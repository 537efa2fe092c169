package personas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfateev/autodev-temporal-go/internal/models"
)

func TestDefaults(t *testing.T) {
	ps := Defaults()
	require.NoError(t, Validate(ps))
	assert.Equal(t, "architect", ps[0].ID)
	assert.Len(t, ps, 4)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	ps, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), ps)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "personas.yaml", `
personas:
  - id: security
    name: Security Reviewer
    role_prompt: You hunt for injection bugs.
  - id: docs
    name: Docs Writer
    role_prompt: You improve documentation.
`)

	ps, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "security", ps[0].ID)
	assert.Equal(t, "Docs Writer", ps[1].Name)
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "personas.json",
		`{"personas": [{"id": "solo", "name": "Solo", "role_prompt": "Just do it."}]}`)

	ps, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "solo", ps[0].ID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EmptySet(t *testing.T) {
	path := writeFile(t, "empty.yaml", "personas: []\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "no personas")
}

func TestValidate_DuplicateID(t *testing.T) {
	err := Validate([]models.Persona{
		{ID: "a", RolePrompt: "x"},
		{ID: "a", RolePrompt: "y"},
	})
	assert.ErrorContains(t, err, "duplicate persona id")
}

func TestValidate_MissingRolePrompt(t *testing.T) {
	err := Validate([]models.Persona{{ID: "a"}})
	assert.ErrorContains(t, err, "role_prompt")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
