// Package instructions contains prompt construction for LLM calls.
package instructions

import (
	"fmt"
	"strings"

	"github.com/mfateev/autodev-temporal-go/internal/models"
)

// patchContract states the output format every provider is held to:
// a unified diff between sentinel markers, empty when no change is
// needed. Extraction in the patch package mirrors this contract.
const patchContract = `You are given a Git repository and a concise task. Produce a unified
diff patch (git apply compatible) that implements the task.

Output rules:
- Output the patch between the markers PATCH_START and PATCH_END.
- If no changes are needed, output PATCH_START immediately followed by
  PATCH_END.
- Use paths relative to the repository root with the conventional a/
  and b/ prefixes.
- Do not include commentary inside the markers.`

// GetPatchContract returns the patch output contract. A non-empty
// override replaces the default entirely.
func GetPatchContract(override string) string {
	if override != "" {
		return override
	}
	return patchContract
}

// BuildPatchPrompt composes the full prompt for one persona: role
// prompt, output contract, task, and optional repository context
// (file listings, failing test output).
func BuildPatchPrompt(p models.Persona, task, repoContext string) string {
	var b strings.Builder

	if p.RolePrompt != "" {
		b.WriteString(p.RolePrompt)
		b.WriteString("\n\n")
	}

	b.WriteString(GetPatchContract(""))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Task:\n%s\n", task)

	if repoContext != "" {
		fmt.Fprintf(&b, "\nRepository context:\n%s\n", repoContext)
	}

	return b.String()
}

// BuildPRBody composes the pull-request body for a completed run.
func BuildPRBody(task string, personaIDs []string) string {
	var b strings.Builder
	b.WriteString("Automated change produced by the persona pipeline.\n\n")
	fmt.Fprintf(&b, "Task: %s\n", task)
	if len(personaIDs) > 0 {
		fmt.Fprintf(&b, "Personas: %s\n", strings.Join(personaIDs, ", "))
	}
	return b.String()
}
