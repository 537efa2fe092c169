// Package personas defines the role templates that vary prompt
// phrasing per run, plus loading of user-supplied persona files.
package personas

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mfateev/autodev-temporal-go/internal/models"
)

// Role prompts for the built-in persona set. Each describes a lens on
// the same task; the pipeline runs every persona in order.

const architectRolePrompt = `You are a software architect. You care about module boundaries, naming,
and the long-term cost of a change. When producing a patch, prefer the
smallest change that keeps the design coherent, and leave the code
easier to extend than you found it. Do not refactor unrelated code.`

const implementerRolePrompt = `You are a pragmatic implementer. You turn a task description into a
direct, working change with no speculative abstraction. Follow the
conventions already present in the files you touch. Keep the patch
minimal and self-contained.`

const testerRolePrompt = `You are a test engineer. Your patch should add or strengthen tests for
the behaviour the task describes: edge cases, failure paths, and
regressions. Only change production code when a test cannot be written
without it.`

const reviewerRolePrompt = `You are a meticulous code reviewer. Approach the task by fixing the
problems a careful review would flag: unclear names, missing error
handling, dead code, misleading comments. Keep each fix small and
obviously correct.`

// Defaults returns the built-in persona set in pipeline order.
func Defaults() []models.Persona {
	return []models.Persona{
		{ID: "architect", Name: "Architect", RolePrompt: architectRolePrompt},
		{ID: "implementer", Name: "Implementer", RolePrompt: implementerRolePrompt},
		{ID: "tester", Name: "Tester", RolePrompt: testerRolePrompt},
		{ID: "reviewer", Name: "Reviewer", RolePrompt: reviewerRolePrompt},
	}
}

// file is the on-disk persona file shape. YAML is the primary format;
// JSON persona files parse through the same path since yaml.v3 accepts
// JSON input.
type file struct {
	Personas []models.Persona `yaml:"personas"`
}

// Load reads personas from path. An empty path yields the defaults.
// The file must contain at least one persona, and every persona needs
// a unique id and a role prompt.
func Load(path string) ([]models.Persona, error) {
	if path == "" {
		return Defaults(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read personas file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse personas file %s: %w", path, err)
	}

	if err := Validate(f.Personas); err != nil {
		return nil, fmt.Errorf("personas file %s: %w", path, err)
	}
	return f.Personas, nil
}

// Validate checks the structural rules for a persona set.
func Validate(ps []models.Persona) error {
	if len(ps) == 0 {
		return fmt.Errorf("no personas defined")
	}
	seen := make(map[string]bool, len(ps))
	for i, p := range ps {
		if p.ID == "" {
			return fmt.Errorf("persona %d: id is required", i+1)
		}
		if p.RolePrompt == "" {
			return fmt.Errorf("persona %q: role_prompt is required", p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate persona id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}
